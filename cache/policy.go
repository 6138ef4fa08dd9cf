package cache

import "time"

// Category names a class of cached data. TTLs and capacities follow the
// volatility of the underlying data: quotes go stale in seconds, filings
// barely change within a trading day.
type Category string

const (
	// CategoryDefault is the fallback for uncategorized data.
	CategoryDefault Category = "default"

	// CategoryPrices holds market quotes and price history.
	CategoryPrices Category = "prices"

	// CategoryFundamentals holds filings and financial statements.
	CategoryFundamentals Category = "fundamentals"

	// CategoryAIResponses holds model completions, which are expensive to
	// recompute but lose relevance as the underlying data moves.
	CategoryAIResponses Category = "ai_responses"
)

// Policy configures caching behavior for one store.
type Policy struct {
	// DefaultTTL is the TTL applied when Set is called without one.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxEntries bounds the store size. The least recently used entry is
	// evicted when a write would exceed it.
	MaxEntries int
}

// DefaultPolicy returns the policy for CategoryDefault.
// DefaultTTL: 5 minutes, MaxTTL: 24 hours, MaxEntries: 10000
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     24 * time.Hour,
		MaxEntries: 10000,
	}
}

// PolicyFor returns the preset policy for a category. Unknown categories
// fall back to DefaultPolicy.
func PolicyFor(c Category) Policy {
	switch c {
	case CategoryPrices:
		return Policy{DefaultTTL: time.Minute, MaxTTL: 24 * time.Hour, MaxEntries: 5000}
	case CategoryFundamentals:
		return Policy{DefaultTTL: time.Hour, MaxTTL: 24 * time.Hour, MaxEntries: 2000}
	case CategoryAIResponses:
		return Policy{DefaultTTL: 10 * time.Minute, MaxTTL: 24 * time.Hour, MaxEntries: 1000}
	default:
		return DefaultPolicy()
	}
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	// Use default if no override (or negative override)
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	// Clamp to MaxTTL if set
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
