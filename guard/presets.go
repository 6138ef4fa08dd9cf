package guard

import (
	"time"

	"github.com/JayeshSL77/Quant-God-sub001/cache"
	"github.com/JayeshSL77/Quant-God-sub001/resilience"
)

// Well-known dependency keys. Each maps to a tuned preset; unknown keys get
// DefaultPreset.
const (
	// DepLLM covers model completion calls. Slow, expensive, and strict
	// provider-side quotas: trip fast, wait long, cache aggressively.
	DepLLM = "llm"

	// DepMarketData covers quote and price-history providers. The public
	// endpoints throttle hard, so the admission budget is tiny.
	DepMarketData = "market_data"

	// DepFilings covers regulatory filing fetches. The source enforces
	// roughly ten requests per second per client.
	DepFilings = "filings"

	// DepDatabase covers the local datastore. Failures are rare and
	// recovery is quick; results are never cached because readers expect
	// their own writes.
	DepDatabase = "database"
)

// PresetFor returns the tuned config for a known dependency key, or
// DefaultPreset for anything else.
func PresetFor(dependency string) CallConfig {
	switch dependency {
	case DepLLM:
		return CallConfig{
			Retry: resilience.RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   time.Second,
				MaxDelay:    30 * time.Second,
				Multiplier:  2.0,
				Jitter:      resilience.JitterProportional,
			},
			Breaker: resilience.CircuitBreakerConfig{
				FailureThreshold: 3,
				RecoveryTimeout:  60 * time.Second,
			},
			Limiter: resilience.RateLimiterConfig{
				Rate:  50,
				Burst: 100,
			},
			// Providers degrade badly under parallel floods, so in-flight
			// completions are capped alongside the request-rate budget.
			Concurrency:    8,
			CacheCategory:  cache.CategoryAIResponses,
			AttemptTimeout: 120 * time.Second,
		}

	case DepMarketData:
		return CallConfig{
			Retry: resilience.RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   500 * time.Millisecond,
				MaxDelay:    10 * time.Second,
				Multiplier:  2.0,
				Jitter:      resilience.JitterUniform,
			},
			Breaker: resilience.CircuitBreakerConfig{
				FailureThreshold: 5,
				RecoveryTimeout:  30 * time.Second,
			},
			Limiter: resilience.RateLimiterConfig{
				Rate:  5,
				Burst: 20,
			},
			CacheCategory:  cache.CategoryPrices,
			AttemptTimeout: 15 * time.Second,
		}

	case DepFilings:
		return CallConfig{
			Retry: resilience.RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   time.Second,
				MaxDelay:    20 * time.Second,
				Multiplier:  2.0,
				Jitter:      resilience.JitterUniform,
			},
			Breaker: resilience.CircuitBreakerConfig{
				FailureThreshold: 5,
				RecoveryTimeout:  30 * time.Second,
			},
			Limiter: resilience.RateLimiterConfig{
				Rate:  8,
				Burst: 10,
			},
			CacheCategory:  cache.CategoryFundamentals,
			AttemptTimeout: 30 * time.Second,
		}

	case DepDatabase:
		return CallConfig{
			Retry: resilience.RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   50 * time.Millisecond,
				MaxDelay:    time.Second,
				Multiplier:  2.0,
			},
			Breaker: resilience.CircuitBreakerConfig{
				FailureThreshold: 3,
				RecoveryTimeout:  10 * time.Second,
			},
			Limiter: resilience.RateLimiterConfig{
				Rate:  100,
				Burst: 200,
			},
			DisableCache:   true,
			AttemptTimeout: 5 * time.Second,
		}

	default:
		return DefaultPreset()
	}
}

// DefaultPreset returns the config used for dependencies with no tuned
// preset.
func DefaultPreset() CallConfig {
	return CallConfig{
		Retry: resilience.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   100 * time.Millisecond,
			MaxDelay:    30 * time.Second,
			Multiplier:  2.0,
			Jitter:      resilience.JitterUniform,
		},
		Breaker: resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
		},
		Limiter: resilience.RateLimiterConfig{
			Rate:  10,
			Burst: 50,
		},
		CacheCategory:  cache.CategoryDefault,
		AttemptTimeout: 30 * time.Second,
	}
}
