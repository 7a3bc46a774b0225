// Package ratelimiter throttles connection acceptance on the xrootd
// listener using a token bucket, so a single misbehaving client can't
// exhaust file descriptors or goroutines.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps golang.org/x/time/rate's token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond sustained, up to burst
// at once. requestsPerSecond == 0 disables limiting.
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		requestsPerSecond = 1_000_000_000
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow reports whether a token is available, consuming it if so. This is
// the non-blocking path used on the accept loop: a rejected connection is
// closed immediately rather than queued.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Tokens reports the current bucket level, for metrics/debugging.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}

// SetLimit adjusts the sustained rate. Burst is reset to 2x the new rate
// when the old burst was 2x the old rate or did not exceed the old rate;
// any other burst is left unchanged.
func (r *RateLimiter) SetLimit(requestsPerSecond uint) {
	if requestsPerSecond == 0 {
		requestsPerSecond = 1_000_000_000
	}

	oldRate := uint(r.limiter.Limit())
	oldBurst := uint(r.limiter.Burst())
	r.limiter.SetLimit(rate.Limit(requestsPerSecond))

	if oldBurst == oldRate*2 || oldBurst <= oldRate {
		r.limiter.SetBurst(int(requestsPerSecond * 2))
	}
}
