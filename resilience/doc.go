// Package resilience guards calls to unreliable, rate-limited, or expensive
// external dependencies: the market-data API, LLM providers, and the
// relational store.
//
// # Patterns
//
//   - Retry: bounded attempts with exponential backoff and configurable
//     jitter; a pluggable classifier decides which failures consume budget.
//
//   - Circuit Breaker: per-dependency failure isolation. After a run of
//     consecutive failures the dependency receives zero additional load
//     until a cooldown elapses, then a bounded number of trial calls test
//     recovery.
//
//   - Rate Limiter: per-dependency admission control, token-bucket or
//     sliding-window, protecting upstream quotas before any health check.
//
//   - Bulkhead: caps in-flight calls per dependency.
//
//   - Timeout: bounds a single attempt, distinct from the caller's total
//     deadline.
//
// Per-key state lives in registries (BreakerRegistry, LimiterRegistry)
// created once per process and passed explicitly to composition sites, so
// tests get clean isolation and unrelated dependencies never serialize
// against each other.
//
// # Usage
//
//	breakers := resilience.NewBreakerRegistry()
//	cb := breakers.Get("market_data", resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    RecoveryTimeout:  30 * time.Second,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    BaseDelay:   time.Second,
//	    Multiplier:  2.0,
//	    Jitter:      resilience.JitterProportional,
//	})
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return retry.Execute(ctx, fetchQuote)
//	})
//
// Each failure kind carries a distinct signal: errors.Is(err,
// ErrCircuitOpen) means the dependency is judged unhealthy, ErrRateLimited
// means this caller's own budget is exhausted, and ErrRetriesExhausted
// wraps the last underlying error after the attempt budget is consumed.
// The full cache → limiter → breaker → retry chain used by the client
// wrappers lives in the guard package.
package resilience
