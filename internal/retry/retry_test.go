package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// TestPolicyDelay tests the backoff schedule.
func TestPolicyDelay(t *testing.T) {
	t.Parallel()

	p := Default()
	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))

	p.MaxDelay = 5 * time.Second
	assert.Equal(t, 5*time.Second, p.Delay(3))

	assert.Equal(t, time.Duration(0), Single().Delay(1))
}

// TestPolicyDoSucceedsFirstTime tests that a successful call is not repeated.
func TestPolicyDoSucceedsFirstTime(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	err := Default().Do(context.Background(), func(_ context.Context, attempt int) error {
		calls.Add(1)
		assert.Equal(t, 1, attempt)

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

// TestPolicyDoRecovers tests that a later attempt may succeed.
func TestPolicyDoRecovers(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}

	var seen []int

	err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		seen = append(seen, attempt)
		if attempt < 3 {
			return errBoom
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

// TestPolicyDoExhausted tests that the last error is kept after every attempt failed.
func TestPolicyDoExhausted(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}

	var calls int

	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++

		return errBoom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls)
}

// TestPolicyDoSingleAttempt tests that a single-attempt policy never sleeps.
func TestPolicyDoSingleAttempt(t *testing.T) {
	t.Parallel()

	var calls int

	start := time.Now()
	err := Single().Do(context.Background(), func(context.Context, int) error {
		calls++

		return errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

// TestPolicyDoZeroAttempts tests that non-positive attempt counts still run once.
func TestPolicyDoZeroAttempts(t *testing.T) {
	t.Parallel()

	var calls int

	err := Policy{}.Do(context.Background(), func(context.Context, int) error {
		calls++

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

// TestPolicyDoCancelledDuringBackoff tests that cancellation interrupts the pause.
func TestPolicyDoCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := Policy{MaxAttempts: 3, BaseDelay: time.Hour, Multiplier: 2}

	var calls int

	done := make(chan error, 1)

	go func() {
		done <- p.Do(ctx, func(context.Context, int) error {
			calls++

			return errBoom
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

// TestPolicyDoCancelledBeforeStart tests that nothing runs on a done context.
func TestPolicyDoCancelledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Default().Do(ctx, func(context.Context, int) error {
		called = true

		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
