package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(RateLimiterConfig{Rate: 2, Burst: 3})
	rl.now = func() time.Time { return now }
	rl.last = now

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("call %d within burst rejected", i)
		}
	}
	if rl.Allow() {
		t.Fatal("bucket should be empty")
	}
	now = now.Add(500 * time.Millisecond)
	if !rl.Allow() {
		t.Fatal("one token should have refilled")
	}
	if rl.Allow() {
		t.Fatal("only one token refilled")
	}
}

func TestRateLimiter_RefillCapsAtBurst(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 2})
	rl.now = func() time.Time { return now }
	rl.last = now
	now = now.Add(time.Hour)
	if got := rl.Tokens(); got != 2 {
		t.Errorf("tokens = %v, want 2", got)
	}
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl.cfg.Rate != 10 || rl.cfg.Burst != 10 {
		t.Errorf("defaults = %+v", rl.cfg)
	}
}
