package guard

import (
	"time"

	"github.com/JayeshSL77/Quant-God-sub001/cache"
	"github.com/JayeshSL77/Quant-God-sub001/resilience"
)

// CallConfig configures how calls against one dependency are guarded.
// The zero value relies on the per-pattern defaults; presets.go carries
// tuned configs for the known upstreams.
type CallConfig struct {
	// Retry configures attempt budget and backoff.
	Retry resilience.RetryConfig

	// Breaker configures the dependency's circuit breaker.
	Breaker resilience.CircuitBreakerConfig

	// Limiter configures the dependency's admission budget.
	Limiter resilience.RateLimiterConfig

	// Concurrency caps in-flight calls. 0 disables the bulkhead stage.
	Concurrency int

	// AttemptTimeout bounds a single attempt. 0 disables the stage; the
	// caller's context deadline still bounds the whole call.
	AttemptTimeout time.Duration

	// CacheCategory selects the cache namespace for results.
	CacheCategory cache.Category

	// CacheTTL overrides the category's default TTL when positive.
	CacheTTL time.Duration

	// DisableCache skips the cache stage entirely. Mutating operations
	// and anything reading its own writes should set this.
	DisableCache bool
}

// CallOption adjusts a CallConfig.
type CallOption func(*CallConfig)

// WithRetry sets the retry configuration.
func WithRetry(cfg resilience.RetryConfig) CallOption {
	return func(c *CallConfig) { c.Retry = cfg }
}

// WithBreaker sets the circuit breaker configuration.
func WithBreaker(cfg resilience.CircuitBreakerConfig) CallOption {
	return func(c *CallConfig) { c.Breaker = cfg }
}

// WithLimiter sets the rate limiter configuration.
func WithLimiter(cfg resilience.RateLimiterConfig) CallOption {
	return func(c *CallConfig) { c.Limiter = cfg }
}

// WithConcurrency enables the bulkhead stage with the given cap.
func WithConcurrency(n int) CallOption {
	return func(c *CallConfig) { c.Concurrency = n }
}

// WithAttemptTimeout enables the per-attempt timeout stage.
func WithAttemptTimeout(d time.Duration) CallOption {
	return func(c *CallConfig) { c.AttemptTimeout = d }
}

// WithCache selects the cache namespace and TTL for results.
// ttl <= 0 uses the category's default TTL.
func WithCache(category cache.Category, ttl time.Duration) CallOption {
	return func(c *CallConfig) {
		c.CacheCategory = category
		c.CacheTTL = ttl
		c.DisableCache = false
	}
}

// WithoutCache disables the cache stage.
func WithoutCache() CallOption {
	return func(c *CallConfig) { c.DisableCache = true }
}

func (c CallConfig) apply(opts []CallOption) CallConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
