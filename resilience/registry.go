package resilience

import "sync"

// BreakerRegistry maps dependency keys to circuit breakers. Breakers are
// created lazily on first use, exactly once per key even under concurrent
// first access, and live for the process lifetime.
type BreakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewBreakerRegistry creates an empty breaker registry. Tests should use a
// fresh registry rather than sharing process-wide state.
func NewBreakerRegistry() *BreakerRegistry {
	return &BreakerRegistry{breakers: make(map[string]*CircuitBreaker)}
}

// Get returns the breaker for key, creating it with config on first use.
// The config of an existing breaker is never replaced, so counters are
// never silently reset by a racing second caller.
func (r *BreakerRegistry) Get(key string, config CircuitBreakerConfig) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[key]; ok {
		return cb
	}
	cb := NewCircuitBreaker(key, config)
	r.breakers[key] = cb
	return cb
}

// Lookup returns the breaker for key without creating one.
func (r *BreakerRegistry) Lookup(key string) (*CircuitBreaker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.breakers[key]
	return cb, ok
}

// Keys returns the registered dependency keys.
func (r *BreakerRegistry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.breakers))
	for k := range r.breakers {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns per-key breaker metrics for health reporting.
func (r *BreakerRegistry) Snapshot() map[string]BreakerMetrics {
	r.mu.Lock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		breakers = append(breakers, cb)
	}
	r.mu.Unlock()

	out := make(map[string]BreakerMetrics, len(breakers))
	for _, cb := range breakers {
		m := cb.Metrics()
		out[m.Key] = m
	}
	return out
}

// LimiterRegistry maps dependency keys to rate limiters with the same
// create-once semantics as BreakerRegistry.
type LimiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*RateLimiter
}

// NewLimiterRegistry creates an empty limiter registry.
func NewLimiterRegistry() *LimiterRegistry {
	return &LimiterRegistry{limiters: make(map[string]*RateLimiter)}
}

// Get returns the limiter for key, creating it with config on first use.
func (r *LimiterRegistry) Get(key string, config RateLimiterConfig) *RateLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rl, ok := r.limiters[key]; ok {
		return rl
	}
	rl := NewRateLimiter(key, config)
	r.limiters[key] = rl
	return rl
}

// Lookup returns the limiter for key without creating one.
func (r *LimiterRegistry) Lookup(key string) (*RateLimiter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rl, ok := r.limiters[key]
	return rl, ok
}

// Keys returns the registered dependency keys.
func (r *LimiterRegistry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.limiters))
	for k := range r.limiters {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns per-key limiter metrics for health reporting.
func (r *LimiterRegistry) Snapshot() map[string]LimiterMetrics {
	r.mu.Lock()
	limiters := make([]*RateLimiter, 0, len(r.limiters))
	for _, rl := range r.limiters {
		limiters = append(limiters, rl)
	}
	r.mu.Unlock()

	out := make(map[string]LimiterMetrics, len(limiters))
	for _, rl := range limiters {
		m := rl.Metrics()
		out[m.Key] = m
	}
	return out
}

// BulkheadRegistry maps dependency keys to bulkheads with the same
// create-once semantics as the other registries.
type BulkheadRegistry struct {
	mu        sync.Mutex
	bulkheads map[string]*Bulkhead
}

// NewBulkheadRegistry creates an empty bulkhead registry.
func NewBulkheadRegistry() *BulkheadRegistry {
	return &BulkheadRegistry{bulkheads: make(map[string]*Bulkhead)}
}

// Get returns the bulkhead for key, creating it with config on first use.
func (r *BulkheadRegistry) Get(key string, config BulkheadConfig) *Bulkhead {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bulkheads[key]; ok {
		return b
	}
	b := NewBulkhead(key, config)
	r.bulkheads[key] = b
	return b
}
