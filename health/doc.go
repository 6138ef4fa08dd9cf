// Package health reports the readiness of guarded upstream dependencies.
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
// Checkers are provided for the resilience and cache layers: BreakerChecker
// flags open or recovering circuits, LimiterChecker flags saturated
// admission budgets, and CacheChecker flags namespaces near capacity or
// with cold hit rates.
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single composite
// check:
//
//	agg := health.NewAggregator()
//	agg.Register("circuit_breakers", health.NewBreakerChecker(g.Breakers()))
//	agg.Register("rate_limiters", health.NewLimiterChecker(g.Limiters()))
//	agg.Register("caches", health.NewCacheChecker(g.Caches(), health.CacheCheckerConfig{}))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common probe patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with component checks
//	http.Handle("/readyz", health.ReadinessHandler(aggregator))
//
//	// Detailed health status
//	http.Handle("/health", health.DetailedHandler(aggregator))
package health
