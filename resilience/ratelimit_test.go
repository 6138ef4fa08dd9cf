package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{})

	if rl.config.Rate != 10 {
		t.Errorf("Rate = %f, want 10", rl.config.Rate)
	}
	if rl.config.Burst != 50 {
		t.Errorf("Burst = %d, want 50", rl.config.Burst)
	}
	if rl.config.Mode != ModeReject {
		t.Errorf("Mode = %v, want ModeReject", rl.config.Mode)
	}
}

func TestRateLimiter_TokenBucketBurst(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{
		Rate:  1, // slow refill so the burst dominates
		Burst: 5,
	})

	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow()
		if !allowed {
			t.Fatalf("call %d denied, want admitted within burst", i+1)
		}
	}

	allowed, retryAfter := rl.Allow()
	if allowed {
		t.Fatalf("call 6 admitted, want denied")
	}
	if retryAfter <= 0 || retryAfter > time.Second {
		t.Errorf("retryAfter = %v, want in (0, 1s]", retryAfter)
	}
}

func TestRateLimiter_TokenBucketRefills(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{
		Rate:  100,
		Burst: 1,
	})

	if allowed, _ := rl.Allow(); !allowed {
		t.Fatalf("first call denied")
	}
	if allowed, _ := rl.Allow(); allowed {
		t.Fatalf("second immediate call admitted, want denied")
	}

	time.Sleep(15 * time.Millisecond) // > 1/100s refill interval

	if allowed, _ := rl.Allow(); !allowed {
		t.Errorf("call after refill denied, want admitted")
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl := NewRateLimiter("market_data", RateLimiterConfig{
		MaxCalls: 10,
		Period:   time.Minute,
	})

	for i := 0; i < 10; i++ {
		allowed, _ := rl.Allow()
		if !allowed {
			t.Fatalf("call %d denied, want admitted within window", i+1)
		}
	}

	allowed, retryAfter := rl.Allow()
	if allowed {
		t.Fatalf("11th call within the window admitted, want denied")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("retryAfter = %v, want in (0, 60s]", retryAfter)
	}
}

func TestRateLimiter_SlidingWindowSlides(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{
		MaxCalls: 2,
		Period:   30 * time.Millisecond,
	})

	rl.Allow()
	rl.Allow()
	if allowed, _ := rl.Allow(); allowed {
		t.Fatalf("third call admitted inside the window")
	}

	time.Sleep(35 * time.Millisecond)

	if allowed, _ := rl.Allow(); !allowed {
		t.Errorf("call denied after the window slid past old timestamps")
	}
}

func TestRateLimiter_AdmitRejectMode(t *testing.T) {
	rl := NewRateLimiter("llm", RateLimiterConfig{
		Rate:  0.1,
		Burst: 1,
	})

	if err := rl.Admit(context.Background()); err != nil {
		t.Fatalf("first Admit error = %v", err)
	}

	err := rl.Admit(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("errors.Is(err, ErrRateLimited) = false, err = %v", err)
	}

	var limit *LimitError
	if !errors.As(err, &limit) {
		t.Fatalf("errors.As(err, *LimitError) = false")
	}
	if limit.Key != "llm" {
		t.Errorf("limit.Key = %q, want llm", limit.Key)
	}
	if limit.RetryAfter <= 0 {
		t.Errorf("limit.RetryAfter = %v, want positive hint", limit.RetryAfter)
	}
}

func TestRateLimiter_WaitMode(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{
		Rate:    100,
		Burst:   1,
		Mode:    ModeWait,
		MaxWait: time.Second,
	})

	if err := rl.Admit(context.Background()); err != nil {
		t.Fatalf("first Admit error = %v", err)
	}

	start := time.Now()
	if err := rl.Admit(context.Background()); err != nil {
		t.Fatalf("waiting Admit error = %v", err)
	}
	if waited := time.Since(start); waited < 5*time.Millisecond {
		t.Errorf("waited %v, want a refill-length wait", waited)
	}
}

func TestRateLimiter_WaitModeBounded(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{
		Rate:    0.01, // ~100s per token; far beyond MaxWait
		Burst:   1,
		Mode:    ModeWait,
		MaxWait: 10 * time.Millisecond,
	})

	if err := rl.Admit(context.Background()); err != nil {
		t.Fatalf("first Admit error = %v", err)
	}

	err := rl.Admit(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("bounded wait error = %v, want rate limited", err)
	}
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{
		Rate:    0.01,
		Burst:   1,
		Mode:    ModeWait,
		MaxWait: time.Minute,
	})

	_ = rl.Admit(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := rl.Admit(ctx)
	if err != context.Canceled {
		t.Errorf("Admit error = %v, want context.Canceled", err)
	}
}

func TestRateLimiter_Execute(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{Rate: 0.1, Burst: 1})

	invoked := 0
	op := func(ctx context.Context) error {
		invoked++
		return nil
	}

	if err := rl.Execute(context.Background(), op); err != nil {
		t.Fatalf("first Execute error = %v", err)
	}

	err := rl.Execute(context.Background(), op)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("second Execute error = %v, want rate limited", err)
	}
	if invoked != 1 {
		t.Errorf("operation invoked %d times, want 1 (denial must not invoke)", invoked)
	}
}

func TestRateLimiter_Metrics(t *testing.T) {
	rl := NewRateLimiter("dep", RateLimiterConfig{MaxCalls: 3, Period: time.Minute})

	rl.Allow()
	m := rl.Metrics()

	if m.Key != "dep" {
		t.Errorf("Key = %q, want dep", m.Key)
	}
	if m.Capacity != 3 {
		t.Errorf("Capacity = %d, want 3", m.Capacity)
	}
	if m.Available != 2 {
		t.Errorf("Available = %f, want 2", m.Available)
	}
}
