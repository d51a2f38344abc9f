package s2

import (
	"context"
	"testing"
	"time"
)

func TestAdaptiveLimiter_Ladder(t *testing.T) {
	l := NewDefaultLimiter()

	if got := l.Delay(); got != DefaultBaseDelay {
		t.Fatalf("initial delay = %v, want %v", got, DefaultBaseDelay)
	}

	// Consecutive 429s climb 1.5 -> 3 -> 5 and stay clamped at 5.
	steps := []time.Duration{
		DefaultRaisedDelay,
		DefaultMaxDelay,
		DefaultMaxDelay,
		DefaultMaxDelay,
	}
	for i, want := range steps {
		l.Backoff()
		if got := l.Delay(); got != want {
			t.Errorf("after backoff %d: delay = %v, want %v", i+1, got, want)
		}
	}
}

func TestAdaptiveLimiter_SuccessResets(t *testing.T) {
	l := NewDefaultLimiter()
	l.Backoff()
	l.Backoff()
	if l.Delay() != DefaultMaxDelay {
		t.Fatalf("setup: delay = %v", l.Delay())
	}

	l.Success()
	if got := l.Delay(); got != DefaultBaseDelay {
		t.Errorf("after success: delay = %v, want %v", got, DefaultBaseDelay)
	}
}

func TestAdaptiveLimiter_WaitHonorsContext(t *testing.T) {
	l := NewAdaptiveLimiter(time.Hour, time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Wait(ctx); err != context.Canceled {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
}

func TestAdaptiveLimiter_WaitSleeps(t *testing.T) {
	l := NewAdaptiveLimiter(20*time.Millisecond, time.Second, time.Second)
	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Wait() returned after %v, expected at least the base delay", elapsed)
	}
}
