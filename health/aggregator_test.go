package health

import (
	"context"
	"testing"
	"time"

	"github.com/JayeshSL77/Quant-God-sub001/resilience"
)

func healthyChecker(name, message string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Healthy(message)
	})
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator()

	if agg.config.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", agg.config.Timeout)
	}
	if !agg.config.Parallel {
		t.Error("Parallel = false, want true")
	}
}

func TestNewAggregator_WithConfig(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Timeout:  5 * time.Second,
		Parallel: false,
	})

	if agg.config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", agg.config.Timeout)
	}
	if agg.config.Parallel {
		t.Error("Parallel = true, want false")
	}
}

func TestAggregator_RegisterUnregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register("circuit_breakers", NewBreakerChecker(resilience.NewBreakerRegistry()))
	agg.Register("database", healthyChecker("database", "datastore reachable"))

	names := agg.CheckerNames()
	if len(names) != 2 {
		t.Fatalf("CheckerNames() has %d entries, want 2", len(names))
	}
	if names[0] != "circuit_breakers" || names[1] != "database" {
		t.Errorf("CheckerNames() = %v, want registration order", names)
	}

	agg.Unregister("database")
	names = agg.CheckerNames()
	if len(names) != 1 || names[0] != "circuit_breakers" {
		t.Errorf("CheckerNames() after Unregister = %v, want [circuit_breakers]", names)
	}
}

func TestAggregator_Check(t *testing.T) {
	agg := NewAggregator()
	agg.Register("rate_limiters", NewLimiterChecker(resilience.NewLimiterRegistry()))

	result, err := agg.Check(context.Background(), "rate_limiters")
	if err != nil {
		t.Fatalf("Check() error = %v, want nil", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}

	if _, err := agg.Check(context.Background(), "no_such_component"); err != ErrCheckerNotFound {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("database", healthyChecker("database", "datastore reachable"))
	agg.Register("market_data", NewCheckerFunc("market_data", func(ctx context.Context) Result {
		return Degraded("limiters saturated: market_data")
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("CheckAll() returned %d results, want 2", len(results))
	}
	if results["database"].Status != StatusHealthy {
		t.Errorf("database status = %v, want StatusHealthy", results["database"].Status)
	}
	if results["market_data"].Status != StatusDegraded {
		t.Errorf("market_data status = %v, want StatusDegraded", results["market_data"].Status)
	}
}

func TestAggregator_CheckAllEmpty(t *testing.T) {
	results := NewAggregator().CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("CheckAll() returned %d results, want 0", len(results))
	}
}

func TestAggregator_CheckAllSequential(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Parallel: false})
	agg.Register("database", healthyChecker("database", "ok"))
	agg.Register("caches", healthyChecker("caches", "ok"))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("CheckAll() returned %d results, want 2", len(results))
	}
}

func TestAggregator_SlowCheckTimesOut(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 50 * time.Millisecond})
	agg.Register("filings", NewCheckerFunc("filings", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("filings source reachable")
	}))

	results := agg.CheckAll(context.Background())
	if results["filings"].Status != StatusUnhealthy {
		t.Errorf("filings status = %v, want StatusUnhealthy", results["filings"].Status)
	}
	if results["filings"].Error != ErrCheckTimeout {
		t.Errorf("filings error = %v, want ErrCheckTimeout", results["filings"].Error)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{
			name:    "empty",
			results: map[string]Result{},
			want:    StatusHealthy,
		},
		{
			name: "all healthy",
			results: map[string]Result{
				"circuit_breakers": Healthy("3 circuits closed"),
				"caches":           Healthy("4 cache namespaces nominal"),
			},
			want: StatusHealthy,
		},
		{
			name: "saturated limiter degrades",
			results: map[string]Result{
				"circuit_breakers": Healthy("3 circuits closed"),
				"rate_limiters":    Degraded("limiters saturated: market_data"),
			},
			want: StatusDegraded,
		},
		{
			name: "open circuit is unhealthy",
			results: map[string]Result{
				"circuit_breakers": Unhealthy("circuits open: llm", ErrCheckFailed),
				"caches":           Healthy("nominal"),
			},
			want: StatusUnhealthy,
		},
		{
			name: "unhealthy overrides degraded",
			results: map[string]Result{
				"circuit_breakers": Unhealthy("circuits open: llm", ErrCheckFailed),
				"rate_limiters":    Degraded("limiters saturated: market_data"),
			},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_AsChecker(t *testing.T) {
	agg := NewAggregator()
	agg.Register("circuit_breakers", NewBreakerChecker(resilience.NewBreakerRegistry()))

	checker := agg.Checker()
	if checker.Name() != "aggregate" {
		t.Errorf("Name() = %q, want aggregate", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if result.Details == nil {
		t.Error("Details is nil, want per-check summary")
	}
}

func TestAggregator_AsCheckerRollsUpFailure(t *testing.T) {
	registry := resilience.NewBreakerRegistry()
	cb := registry.Get("llm", resilience.CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Minute,
	})
	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return ErrCheckFailed
	})

	agg := NewAggregator()
	agg.Register("circuit_breakers", NewBreakerChecker(registry))

	result := agg.Checker().Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
	if result.Message != "some checks failed" {
		t.Errorf("Message = %q, want some checks failed", result.Message)
	}
}

func TestAggregator_RegisterReplacesDuplicate(t *testing.T) {
	agg := NewAggregator()
	agg.Register("database", healthyChecker("database", "primary"))
	agg.Register("database", healthyChecker("database", "replica"))

	names := agg.CheckerNames()
	if len(names) != 1 {
		t.Errorf("CheckerNames() has %d entries after duplicate, want 1", len(names))
	}

	result, _ := agg.Check(context.Background(), "database")
	if result.Message != "replica" {
		t.Errorf("Message = %q, want replica", result.Message)
	}
}
