package resilience

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterMode selects what happens when admission would exceed the budget.
type LimiterMode int

const (
	// ModeReject denies immediately with a retry-after hint.
	ModeReject LimiterMode = iota
	// ModeWait blocks until admission is possible, bounded by MaxWait
	// and the caller's context.
	ModeWait
)

// RateLimiterConfig configures the rate limiter.
//
// By default the limiter is a token bucket: tokens refill continuously at
// Rate per second, capped at Burst. Setting both MaxCalls and Period
// switches to sliding-window semantics: at most MaxCalls admissions within
// any trailing Period.
type RateLimiterConfig struct {
	// Rate is tokens added per second (token-bucket mode).
	// Default: 10
	Rate float64

	// Burst is the bucket capacity (token-bucket mode).
	// Default: 50
	Burst int

	// MaxCalls is the admission ceiling per Period (sliding-window mode).
	MaxCalls int

	// Period is the trailing window length (sliding-window mode).
	Period time.Duration

	// Mode selects reject or wait behavior.
	// Default: ModeReject
	Mode LimiterMode

	// MaxWait bounds how long ModeWait blocks for admission.
	// Default: 1 second
	MaxWait time.Duration
}

// RateLimiter controls admission for a single dependency key. Denial means
// "this caller's budget is exhausted", never "the dependency is failing";
// that distinction belongs to the circuit breaker.
type RateLimiter struct {
	key    string
	config RateLimiterConfig

	// Token-bucket mode.
	bucket *rate.Limiter

	// Sliding-window mode.
	mu    sync.Mutex
	calls []time.Time
}

// NewRateLimiter creates a rate limiter for the dependency identified by key.
func NewRateLimiter(key string, config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 50
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	rl := &RateLimiter{key: key, config: config}
	if !rl.windowed() {
		rl.bucket = rate.NewLimiter(rate.Limit(config.Rate), config.Burst)
	}
	return rl
}

// windowed reports whether sliding-window semantics are configured.
func (rl *RateLimiter) windowed() bool {
	return rl.config.MaxCalls > 0 && rl.config.Period > 0
}

// Allow attempts a single admission. When denied, the returned duration is
// a hint for when admission should next succeed.
func (rl *RateLimiter) Allow() (bool, time.Duration) {
	if rl.windowed() {
		return rl.allowWindow()
	}

	res := rl.bucket.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) allowWindow() (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.config.Period)

	// Drop timestamps that fell out of the trailing window.
	kept := rl.calls[:0]
	for _, t := range rl.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	rl.calls = kept

	if len(rl.calls) < rl.config.MaxCalls {
		rl.calls = append(rl.calls, now)
		return true, 0
	}

	// Oldest call leaving the window frees the next slot.
	return false, rl.calls[0].Add(rl.config.Period).Sub(now)
}

// Admit applies the configured mode: ModeReject returns a *LimitError on
// denial; ModeWait blocks up to MaxWait (and the context deadline) for a
// slot.
func (rl *RateLimiter) Admit(ctx context.Context) error {
	if rl.config.Mode == ModeWait {
		return rl.Wait(ctx)
	}

	allowed, after := rl.Allow()
	if !allowed {
		return &LimitError{Key: rl.key, RetryAfter: after}
	}
	return nil
}

// Wait blocks until admission succeeds, the context is done, or MaxWait
// elapses. A bounded wait that still cannot admit returns a *LimitError.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	deadline := time.Now().Add(rl.config.MaxWait)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		allowed, after := rl.Allow()
		if allowed {
			return nil
		}

		if time.Now().Add(after).After(deadline) {
			return &LimitError{Key: rl.key, RetryAfter: after}
		}

		timer := time.NewTimer(after)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Execute runs the operation if admitted.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := rl.Admit(ctx); err != nil {
		return err
	}
	return op(ctx)
}

// Key returns the dependency key this limiter guards.
func (rl *RateLimiter) Key() string {
	return rl.key
}

// Tokens returns the currently available admission budget. In window mode
// it is the number of free slots in the trailing period.
func (rl *RateLimiter) Tokens() float64 {
	if rl.windowed() {
		rl.mu.Lock()
		defer rl.mu.Unlock()

		cutoff := time.Now().Add(-rl.config.Period)
		active := 0
		for _, t := range rl.calls {
			if t.After(cutoff) {
				active++
			}
		}
		return float64(rl.config.MaxCalls - active)
	}
	return rl.bucket.Tokens()
}

// LimiterMetrics contains a snapshot of rate limiter state.
type LimiterMetrics struct {
	Key       string
	Available float64
	Capacity  int
}

// Metrics returns a snapshot for health reporting.
func (rl *RateLimiter) Metrics() LimiterMetrics {
	capacity := rl.config.Burst
	if rl.windowed() {
		capacity = rl.config.MaxCalls
	}
	return LimiterMetrics{
		Key:       rl.key,
		Available: rl.Tokens(),
		Capacity:  capacity,
	}
}
