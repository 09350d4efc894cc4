package http

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitTransport is an http.RoundTripper that waits for a token bucket
// before every request. Waiting honors the request context.
type RateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitTransport wraps next with a limiter allowing requestsPerSecond
// requests with the given burst. A non-positive rate returns next unchanged.
func NewRateLimitTransport(next http.RoundTripper, requestsPerSecond float64, burst int) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	if requestsPerSecond <= 0 {
		return next
	}

	return &RateLimitTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), max(burst, 1)),
	}
}

// RoundTrip implements the http.RoundTripper interface.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return t.next.RoundTrip(req)
}
