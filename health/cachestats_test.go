package health

import (
	"context"
	"strings"
	"testing"

	"github.com/JayeshSL77/Quant-God-sub001/cache"
)

func TestCacheChecker_Healthy(t *testing.T) {
	registry := cache.NewRegistry()
	defer registry.Close()

	store := registry.Store(cache.CategoryPrices)
	if err := store.Set(context.Background(), "cache:quote:aapl", 187.32, 0); err != nil {
		t.Fatalf("Set() error = %v, want nil", err)
	}

	checker := NewCacheChecker(registry, CacheCheckerConfig{})
	if got := checker.Name(); got != "caches" {
		t.Errorf("Name() = %q, want caches", got)
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if _, ok := result.Details["prices"]; !ok {
		t.Errorf("Details = %v, want prices entry", result.Details)
	}
}

func TestCacheChecker_NearCapacityIsDegraded(t *testing.T) {
	registry := cache.NewRegistry()
	defer registry.Close()

	store := registry.Store(cache.CategoryDefault)
	if err := store.Set(context.Background(), "cache:k:1", 1, 0); err != nil {
		t.Fatalf("Set() error = %v, want nil", err)
	}

	// A tiny threshold makes any occupancy count as near capacity.
	checker := NewCacheChecker(registry, CacheCheckerConfig{OccupancyThreshold: 0.00001})
	result := checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Fatalf("Status = %v, want StatusDegraded", result.Status)
	}
	if !strings.Contains(result.Message, "near capacity") {
		t.Errorf("Message = %q, want near capacity", result.Message)
	}
}

func TestCacheChecker_LowHitRateIsDegraded(t *testing.T) {
	registry := cache.NewRegistry()
	defer registry.Close()

	store := registry.Store(cache.CategoryDefault)
	ctx := context.Background()

	// One miss, one set, one hit: 50% hit rate over 2 lookups.
	if _, ok := store.Get(ctx, "cache:k:1"); ok {
		t.Fatal("Get() hit on empty store")
	}
	if err := store.Set(ctx, "cache:k:1", 1, 0); err != nil {
		t.Fatalf("Set() error = %v, want nil", err)
	}
	if _, ok := store.Get(ctx, "cache:k:1"); !ok {
		t.Fatal("Get() miss after Set")
	}

	checker := NewCacheChecker(registry, CacheCheckerConfig{
		MinHitRate: 0.9,
		MinLookups: 2,
	})
	result := checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Fatalf("Status = %v, want StatusDegraded", result.Status)
	}
	if !strings.Contains(result.Message, "hit rate low") {
		t.Errorf("Message = %q, want hit rate low", result.Message)
	}
}

func TestCacheChecker_EmptyRegistry(t *testing.T) {
	registry := cache.NewRegistry()
	defer registry.Close()

	result := NewCacheChecker(registry, CacheCheckerConfig{}).Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
}
