package observe

import (
	"context"
	"time"
)

// CallFunc is the signature for guarded call functions.
// This is the standard function signature that Middleware wraps.
type CallFunc func(ctx context.Context, meta CallMeta, args any) (any, error)

// Middleware wraps guarded calls with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe CallFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Args/result values are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a CallFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn CallFunc) CallFunc {
	return func(ctx context.Context, meta CallMeta, args any) (any, error) {
		// Start span
		ctx, span := m.tracer.StartSpan(ctx, meta)

		// Record start time
		start := time.Now()

		// Execute the function
		result, err := fn(ctx, meta, args)

		// Calculate duration
		duration := time.Since(start)

		// End span (records error status if err != nil)
		m.tracer.EndSpan(span, err)

		// Record metrics
		m.metrics.RecordCall(ctx, meta, duration, err)

		// Log the call
		callLogger := m.logger.WithCall(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			callLogger.Error(ctx, "guarded call failed", fields...)
		} else {
			callLogger.Info(ctx, "guarded call completed", fields...)
		}

		return result, err
	}
}

// CacheLookup records a cache hit or miss for a call.
func (m *Middleware) CacheLookup(ctx context.Context, meta CallMeta, hit bool) {
	m.metrics.RecordCacheLookup(ctx, meta, hit)
	if hit {
		m.logger.WithCall(meta).Debug(ctx, "cache hit")
	}
}

// RateLimitDenied records an admission denial for a call.
func (m *Middleware) RateLimitDenied(ctx context.Context, meta CallMeta) {
	m.metrics.RecordRateLimitDenied(ctx, meta)
	m.logger.WithCall(meta).Warn(ctx, "rate limit denied")
}

// BreakerTransition records a circuit breaker state change.
func (m *Middleware) BreakerTransition(ctx context.Context, dependency, from, to string) {
	m.metrics.RecordBreakerTransition(ctx, dependency, from, to)
	m.logger.Warn(ctx, "circuit breaker transition",
		Field{Key: "dependency", Value: dependency},
		Field{Key: "from", Value: from},
		Field{Key: "to", Value: to},
	)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}

// NoopMiddleware returns a middleware that records nothing. Useful when a
// Guard is constructed without an observer.
func NoopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), &noopMetrics{}, &noopLogger{})
}
