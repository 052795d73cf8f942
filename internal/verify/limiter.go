package verify

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles verification calls to the provider
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a rate limiter allowing callsPerSecond sustained calls
// with the given burst. A non-positive rate disables throttling.
func NewLimiter(callsPerSecond float64, burst int) *Limiter {
	if callsPerSecond <= 0 {
		return &Limiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(callsPerSecond), burst)}
}

// Wait blocks until a call is allowed or the context is done
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow checks if a call is allowed without waiting
func (l *Limiter) Allow() bool {
	if l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}
