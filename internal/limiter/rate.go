package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RemovalLimiter caps how many removals a sweep issues per second
type RemovalLimiter struct {
	limiter *rate.Limiter
}

// NewRemovalLimiter returns nil when perSecond is not positive. A nil
// limiter never waits.
func NewRemovalLimiter(perSecond float64) *RemovalLimiter {
	if perSecond <= 0 {
		return nil
	}
	return &RemovalLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Wait blocks until the next removal is allowed
func (l *RemovalLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Limit returns the configured rate, 0 when unlimited
func (l *RemovalLimiter) Limit() float64 {
	if l == nil {
		return 0
	}
	return float64(l.limiter.Limit())
}
