package health

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JayeshSL77/Quant-God-sub001/resilience"
)

// BreakerChecker reports health from circuit breaker state. Any open breaker
// marks the component unhealthy; a half-open breaker in recovery marks it
// degraded.
type BreakerChecker struct {
	registry *resilience.BreakerRegistry
}

// NewBreakerChecker creates a checker over the given breaker registry.
func NewBreakerChecker(registry *resilience.BreakerRegistry) *BreakerChecker {
	return &BreakerChecker{registry: registry}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return "circuit_breakers"
}

// Check inspects every registered breaker.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	snapshot := c.registry.Snapshot()

	var open, halfOpen []string
	details := make(map[string]any, len(snapshot))
	for key, m := range snapshot {
		details[key] = map[string]any{
			"state":    m.State.String(),
			"failures": m.Failures,
			"cooldown": m.Cooldown.String(),
		}
		switch m.State {
		case resilience.StateOpen:
			open = append(open, key)
		case resilience.StateHalfOpen:
			halfOpen = append(halfOpen, key)
		}
	}
	sort.Strings(open)
	sort.Strings(halfOpen)

	if len(open) > 0 {
		return Unhealthy(
			fmt.Sprintf("circuits open: %s", strings.Join(open, ", ")),
			ErrCheckFailed,
		).WithDetails(details)
	}
	if len(halfOpen) > 0 {
		return Degraded(
			fmt.Sprintf("circuits recovering: %s", strings.Join(halfOpen, ", ")),
		).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d circuits closed", len(snapshot))).WithDetails(details)
}

// LimiterChecker reports health from rate limiter saturation. A limiter with
// no remaining budget marks the component degraded: calls are being shed,
// but the dependency itself is not failing.
type LimiterChecker struct {
	registry *resilience.LimiterRegistry
}

// NewLimiterChecker creates a checker over the given limiter registry.
func NewLimiterChecker(registry *resilience.LimiterRegistry) *LimiterChecker {
	return &LimiterChecker{registry: registry}
}

// Name returns the name of this checker.
func (c *LimiterChecker) Name() string {
	return "rate_limiters"
}

// Check inspects every registered limiter.
func (c *LimiterChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	snapshot := c.registry.Snapshot()

	var saturated []string
	details := make(map[string]any, len(snapshot))
	for key, m := range snapshot {
		details[key] = map[string]any{
			"available": m.Available,
			"capacity":  m.Capacity,
		}
		if m.Available < 1 {
			saturated = append(saturated, key)
		}
	}
	sort.Strings(saturated)

	if len(saturated) > 0 {
		return Degraded(
			fmt.Sprintf("limiters saturated: %s", strings.Join(saturated, ", ")),
		).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d limiters with budget", len(snapshot))).WithDetails(details)
}
