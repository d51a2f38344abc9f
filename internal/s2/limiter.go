package s2

import (
	"context"
	"time"
)

// Default delay ladder for the adaptive limiter. A successful request
// drops the delay back to the base; each 429 climbs one rung and the
// delay never exceeds the max.
const (
	DefaultBaseDelay   = 1500 * time.Millisecond
	DefaultRaisedDelay = 3 * time.Second
	DefaultMaxDelay    = 5 * time.Second
)

// AdaptiveLimiter holds the current inter-request delay for one run.
// The same limiter instance is shared by every lookup the client makes,
// so a 429 on one lookup slows down the next. The pipeline is single
// threaded; the limiter is not safe for concurrent use.
type AdaptiveLimiter struct {
	delay  time.Duration
	base   time.Duration
	raised time.Duration
	max    time.Duration
}

// NewAdaptiveLimiter creates a limiter starting at base. Tests pass
// small durations to avoid real sleeps.
func NewAdaptiveLimiter(base, raised, max time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{delay: base, base: base, raised: raised, max: max}
}

// NewDefaultLimiter creates a limiter with the production ladder.
func NewDefaultLimiter() *AdaptiveLimiter {
	return NewAdaptiveLimiter(DefaultBaseDelay, DefaultRaisedDelay, DefaultMaxDelay)
}

// Wait sleeps for the current delay. It returns early with the context
// error if the context is cancelled first.
func (l *AdaptiveLimiter) Wait(ctx context.Context) error {
	t := time.NewTimer(l.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Success resets the delay to the base after a 200 response.
func (l *AdaptiveLimiter) Success() {
	l.delay = l.base
}

// Backoff climbs the delay ladder after a 429: base, raised, max,
// clamped at max no matter how many more 429s arrive.
func (l *AdaptiveLimiter) Backoff() {
	switch {
	case l.delay < l.raised:
		l.delay = l.raised
	case l.delay < l.max:
		l.delay = l.max
	}
}

// Delay exposes the current delay for progress reporting and tests.
func (l *AdaptiveLimiter) Delay() time.Duration {
	return l.delay
}
