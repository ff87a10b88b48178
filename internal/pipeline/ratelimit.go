package pipeline

import (
	"context"
	"time"
)

// RateLimiter blocks between enrich-and-write cycles.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay waits the same duration every time. It is a static delay,
// not a token bucket.
type FixedDelay time.Duration

// Wait sleeps for the delay or until ctx is done.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoDelay never waits.
type NoDelay struct{}

// Wait implements RateLimiter.
func (NoDelay) Wait(ctx context.Context) error { return ctx.Err() }
