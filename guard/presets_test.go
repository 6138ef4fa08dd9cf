package guard

import (
	"testing"
	"time"

	"github.com/JayeshSL77/Quant-God-sub001/cache"
)

func TestPresetFor(t *testing.T) {
	tests := []struct {
		dependency   string
		threshold    int
		recovery     time.Duration
		rate         float64
		burst        int
		concurrency  int
		category     cache.Category
		disableCache bool
	}{
		{DepLLM, 3, 60 * time.Second, 50, 100, 8, cache.CategoryAIResponses, false},
		{DepMarketData, 5, 30 * time.Second, 5, 20, 0, cache.CategoryPrices, false},
		{DepFilings, 5, 30 * time.Second, 8, 10, 0, cache.CategoryFundamentals, false},
		{DepDatabase, 3, 10 * time.Second, 100, 200, 0, "", true},
		{"unknown_service", 5, 30 * time.Second, 10, 50, 0, cache.CategoryDefault, false},
	}

	for _, tt := range tests {
		t.Run(tt.dependency, func(t *testing.T) {
			cfg := PresetFor(tt.dependency)

			if cfg.Breaker.FailureThreshold != tt.threshold {
				t.Errorf("FailureThreshold = %d, want %d", cfg.Breaker.FailureThreshold, tt.threshold)
			}
			if cfg.Breaker.RecoveryTimeout != tt.recovery {
				t.Errorf("RecoveryTimeout = %v, want %v", cfg.Breaker.RecoveryTimeout, tt.recovery)
			}
			if cfg.Limiter.Rate != tt.rate {
				t.Errorf("Rate = %v, want %v", cfg.Limiter.Rate, tt.rate)
			}
			if cfg.Limiter.Burst != tt.burst {
				t.Errorf("Burst = %d, want %d", cfg.Limiter.Burst, tt.burst)
			}
			if cfg.Concurrency != tt.concurrency {
				t.Errorf("Concurrency = %d, want %d", cfg.Concurrency, tt.concurrency)
			}
			if cfg.CacheCategory != tt.category {
				t.Errorf("CacheCategory = %q, want %q", cfg.CacheCategory, tt.category)
			}
			if cfg.DisableCache != tt.disableCache {
				t.Errorf("DisableCache = %v, want %v", cfg.DisableCache, tt.disableCache)
			}
			if cfg.Retry.MaxAttempts != 3 {
				t.Errorf("MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
			}
		})
	}
}

func TestCallConfig_Apply(t *testing.T) {
	cfg := DefaultPreset().apply([]CallOption{
		WithConcurrency(4),
		WithAttemptTimeout(5 * time.Second),
		WithCache(cache.CategoryPrices, 90*time.Second),
	})

	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.AttemptTimeout != 5*time.Second {
		t.Errorf("AttemptTimeout = %v, want 5s", cfg.AttemptTimeout)
	}
	if cfg.CacheCategory != cache.CategoryPrices {
		t.Errorf("CacheCategory = %q, want prices", cfg.CacheCategory)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.CacheTTL)
	}
	if cfg.DisableCache {
		t.Error("DisableCache = true, want false")
	}
}
