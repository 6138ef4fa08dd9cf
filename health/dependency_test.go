package health

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JayeshSL77/Quant-God-sub001/resilience"
)

func TestBreakerChecker_Healthy(t *testing.T) {
	registry := resilience.NewBreakerRegistry()
	registry.Get("market_data", resilience.CircuitBreakerConfig{})
	registry.Get("filings", resilience.CircuitBreakerConfig{})

	checker := NewBreakerChecker(registry)
	if got := checker.Name(); got != "circuit_breakers" {
		t.Errorf("Name() = %q, want circuit_breakers", got)
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if len(result.Details) != 2 {
		t.Errorf("Details has %d entries, want 2", len(result.Details))
	}
}

func TestBreakerChecker_OpenCircuitIsUnhealthy(t *testing.T) {
	registry := resilience.NewBreakerRegistry()
	cb := registry.Get("llm", resilience.CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Minute,
	})
	registry.Get("filings", resilience.CircuitBreakerConfig{})

	errDown := errors.New("down")
	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return errDown
	})

	result := NewBreakerChecker(registry).Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Fatalf("Status = %v, want StatusUnhealthy", result.Status)
	}
	if !strings.Contains(result.Message, "llm") {
		t.Errorf("Message = %q, want mention of llm", result.Message)
	}
	if result.Error == nil {
		t.Error("Error = nil, want ErrCheckFailed")
	}
}

func TestBreakerChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewBreakerChecker(resilience.NewBreakerRegistry()).Check(ctx)
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
}

func TestLimiterChecker_Healthy(t *testing.T) {
	registry := resilience.NewLimiterRegistry()
	registry.Get("market_data", resilience.RateLimiterConfig{Rate: 5, Burst: 20})

	checker := NewLimiterChecker(registry)
	if got := checker.Name(); got != "rate_limiters" {
		t.Errorf("Name() = %q, want rate_limiters", got)
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
}

func TestLimiterChecker_SaturatedIsDegraded(t *testing.T) {
	registry := resilience.NewLimiterRegistry()
	rl := registry.Get("feed", resilience.RateLimiterConfig{Rate: 0.001, Burst: 1})

	if ok, _ := rl.Allow(); !ok {
		t.Fatal("Allow() = false, want the only token")
	}

	result := NewLimiterChecker(registry).Check(context.Background())
	if result.Status != StatusDegraded {
		t.Fatalf("Status = %v, want StatusDegraded", result.Status)
	}
	if !strings.Contains(result.Message, "feed") {
		t.Errorf("Message = %q, want mention of feed", result.Message)
	}
}
