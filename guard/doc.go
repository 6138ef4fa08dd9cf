// Package guard composes caching and resilience into a single entry point
// for calls to upstream dependencies.
//
// Every call runs through the same chain, outermost first:
//
//	cache → rate limiter → bulkhead → circuit breaker → retry → attempt timeout → operation
//
// A cache hit short-circuits the whole chain, so cached reads stay fast
// even when a dependency is rate limited or its breaker is open. Shared
// state (breakers, limiters, bulkheads) is keyed by dependency: one
// misbehaving upstream never degrades calls to another.
//
// Known dependency keys (DepLLM, DepMarketData, DepFilings, DepDatabase)
// resolve to tuned presets; unknown keys get conservative defaults. Both
// can be overridden per guard with WithDependencyConfig or per call with
// CallOptions.
//
//	g := guard.New(guard.WithMiddleware(mw))
//	defer g.Close()
//
//	out, err := g.Do(ctx, guard.Call{
//		Dependency: guard.DepMarketData,
//		Operation:  "get_prices",
//		Args:       req,
//	}, func(ctx context.Context) (any, error) {
//		return client.Prices(ctx, req)
//	})
//
// Failure kinds are distinguishable with errors.Is and errors.As:
// resilience.ErrRateLimited, resilience.ErrCircuitOpen and
// resilience.ErrRetriesExhausted cover denials, fast-fails and exhausted
// budgets; operation errors wrapped with resilience.NonRetryable pass
// through after a single attempt.
package guard
