// Package retry runs operations with a bounded number of attempts and exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oshokin/hifi-grabber/internal/logger"
)

const (
	// DefaultMaxAttempts is the number of attempts used for album tracks.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the delay before the second attempt.
	DefaultBaseDelay = 2 * time.Second
	// DefaultMultiplier is the growth factor of the delay between attempts.
	DefaultMultiplier = 2.0
)

// ErrAttemptsExhausted is returned when every attempt failed.
var ErrAttemptsExhausted = errors.New("all attempts failed")

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// BaseDelay is the pause after the first failed attempt.
	BaseDelay time.Duration
	// Multiplier scales the pause after every further failed attempt.
	Multiplier float64
	// MaxDelay caps a single pause. Zero means no cap.
	MaxDelay time.Duration
}

// Single is a policy that makes exactly one attempt.
func Single() Policy {
	return Policy{MaxAttempts: 1}
}

// Default is the album track policy: 3 attempts, 2s base delay doubling each time.
func Default() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
	}
}

// Delay returns the pause made after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}

	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	delay := float64(p.BaseDelay) * math.Pow(multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if delay > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(delay)
}

// Do calls fn until it succeeds, the attempts run out or ctx is done.
// Attempts are numbered from 1. There is no pause after the last attempt.
// A context error is returned as is; exhaustion wraps both ErrAttemptsExhausted and the last error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := max(p.MaxAttempts, 1)

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return errors.Join(ctx.Err(), lastErr)
		}

		if attempt == attempts {
			break
		}

		delay := p.Delay(attempt)
		logger.Debugf(ctx, "Attempt %d of %d failed, retrying in %s: %v", attempt, attempts, delay, lastErr)

		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()

			return errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempt(s): %w", ErrAttemptsExhausted, attempts, lastErr)
}
