package guard

import (
	"context"
	"errors"
	"sync"

	"github.com/JayeshSL77/Quant-God-sub001/cache"
	"github.com/JayeshSL77/Quant-God-sub001/observe"
	"github.com/JayeshSL77/Quant-God-sub001/resilience"
)

// Sentinel errors for guarded calls.
var (
	// ErrMissingDependency indicates Call.Dependency is empty.
	ErrMissingDependency = errors.New("guard: dependency key is required")

	// ErrNilOperation indicates a nil operation was passed to Do.
	ErrNilOperation = errors.New("guard: operation is nil")
)

// Operation produces the result of one upstream call. It must honor the
// context: the guard cancels it on attempt timeout.
type Operation func(ctx context.Context) (any, error)

// Call identifies one guarded upstream call. Dependency selects the shared
// breaker, limiter and preset; Operation and Args fingerprint the cache key.
type Call struct {
	Dependency string
	Operation  string
	Args       any
}

// ID returns the fully qualified call identifier.
func (c Call) ID() string {
	if c.Operation != "" {
		return c.Dependency + "." + c.Operation
	}
	return c.Dependency
}

// Guard runs operations through the full protection chain:
//
//	cache → rate limiter → bulkhead → circuit breaker → retry → attempt timeout → operation
//
// A cache hit returns immediately: it consumes no admission budget and
// never touches the breaker. Breakers, limiters and bulkheads are shared
// per dependency key across all call sites; unrelated keys never
// serialize on each other.
type Guard struct {
	breakers  *resilience.BreakerRegistry
	limiters  *resilience.LimiterRegistry
	bulkheads *resilience.BulkheadRegistry
	caches    *cache.Registry
	keyer     cache.Keyer
	mw        *observe.Middleware

	mu        sync.Mutex
	overrides map[string]CallConfig
	configs   map[string]CallConfig
}

// Option configures a Guard.
type Option func(*Guard)

// WithMiddleware wires an observability middleware into the guard. Build
// one with observe.MiddlewareFromObserver.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(g *Guard) { g.mw = mw }
}

// WithKeyer replaces the default cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(g *Guard) { g.keyer = k }
}

// WithCacheRegistry replaces the default cache registry, allowing namespaces
// to be shared with other components.
func WithCacheRegistry(r *cache.Registry) Option {
	return func(g *Guard) { g.caches = r }
}

// WithDependencyConfig overrides the preset for a dependency key. It must be
// supplied before the first call against that key: breakers and limiters are
// created once, on first use.
func WithDependencyConfig(dependency string, cfg CallConfig) Option {
	return func(g *Guard) { g.overrides[dependency] = cfg }
}

// New creates a Guard with fresh registries.
func New(opts ...Option) *Guard {
	g := &Guard{
		breakers:  resilience.NewBreakerRegistry(),
		limiters:  resilience.NewLimiterRegistry(),
		bulkheads: resilience.NewBulkheadRegistry(),
		caches:    cache.NewRegistry(),
		keyer:     cache.NewDefaultKeyer(),
		mw:        observe.NoopMiddleware(),
		overrides: make(map[string]CallConfig),
		configs:   make(map[string]CallConfig),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do runs op through the protection chain for call.Dependency. Per-call
// options adjust the resolved config for this invocation; shared state
// (breaker, limiter, bulkhead) keeps the config it was first created with.
//
// Callers distinguish failure kinds with errors.Is/As: cache hits and
// successes return (value, nil); denials surface *resilience.LimitError,
// fast-fails *resilience.OpenError, exhausted retries
// *resilience.ExhaustedError; non-retryable operation errors pass through
// unchanged.
func (g *Guard) Do(ctx context.Context, call Call, op Operation, opts ...CallOption) (any, error) {
	if call.Dependency == "" {
		return nil, ErrMissingDependency
	}
	if op == nil {
		return nil, ErrNilOperation
	}

	cfg := g.configFor(call.Dependency).apply(opts)
	meta := observe.CallMeta{
		Dependency: call.Dependency,
		Operation:  call.Operation,
	}
	if !cfg.DisableCache {
		meta.Category = string(cfg.CacheCategory)
	}

	if cfg.DisableCache {
		return g.execute(ctx, meta, cfg, call.Args, op)
	}

	key, err := g.keyer.Key(call.ID(), call.Args)
	if err != nil {
		// Unfingerprintable arguments: run the call unguarded by the
		// cache rather than failing it.
		return g.execute(ctx, meta, cfg, call.Args, op)
	}

	loader := g.caches.Loader(cfg.CacheCategory)
	value, cached, err := loader.GetOrCompute(ctx, key, cfg.CacheTTL, func(ctx context.Context) (any, error) {
		return g.execute(ctx, meta, cfg, call.Args, op)
	})
	if err != nil {
		return nil, err
	}
	g.mw.CacheLookup(ctx, meta, cached)
	return value, nil
}

// execute runs the resilience chain below the cache stage.
func (g *Guard) execute(ctx context.Context, meta observe.CallMeta, cfg CallConfig, args any, op Operation) (any, error) {
	fn := g.mw.Wrap(func(ctx context.Context, meta observe.CallMeta, _ any) (any, error) {
		limiter := g.limiters.Get(meta.Dependency, cfg.Limiter)
		if err := limiter.Admit(ctx); err != nil {
			if errors.Is(err, resilience.ErrRateLimited) {
				g.mw.RateLimitDenied(ctx, meta)
			}
			return nil, err
		}

		// An abandoned timed-out attempt may still complete while the
		// next attempt runs, so the result slot is guarded.
		var (
			mu     sync.Mutex
			result any
		)
		invoke := func(ctx context.Context) error {
			v, err := op(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			result = v
			mu.Unlock()
			return nil
		}

		// Build the chain from inside out, matching the documented order.
		execute := invoke

		if cfg.AttemptTimeout > 0 {
			t := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: cfg.AttemptTimeout})
			inner := execute
			execute = func(ctx context.Context) error {
				return t.Execute(ctx, inner)
			}
		}

		retry := resilience.NewRetry(cfg.Retry)
		{
			inner := execute
			execute = func(ctx context.Context) error {
				return retry.Execute(ctx, inner)
			}
		}

		breaker := g.breakers.Get(meta.Dependency, cfg.Breaker)
		{
			inner := execute
			execute = func(ctx context.Context) error {
				return breaker.Execute(ctx, inner)
			}
		}

		if cfg.Concurrency > 0 {
			bulkhead := g.bulkheads.Get(meta.Dependency, resilience.BulkheadConfig{MaxConcurrent: cfg.Concurrency})
			inner := execute
			execute = func(ctx context.Context) error {
				return bulkhead.Execute(ctx, inner)
			}
		}

		if err := execute(ctx); err != nil {
			return nil, err
		}

		mu.Lock()
		defer mu.Unlock()
		return result, nil
	})

	return fn(ctx, meta, args)
}

// configFor resolves the dependency's config, falling back to its preset.
// The resolved config is pinned on first use so shared breaker and limiter
// state always matches it.
func (g *Guard) configFor(dependency string) CallConfig {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cfg, ok := g.configs[dependency]; ok {
		return cfg
	}

	cfg, ok := g.overrides[dependency]
	if !ok {
		cfg = PresetFor(dependency)
	}

	// Surface breaker transitions through the middleware without
	// clobbering a hook the preset carries.
	prev := cfg.Breaker.OnStateChange
	cfg.Breaker.OnStateChange = func(from, to resilience.State) {
		g.mw.BreakerTransition(context.Background(), dependency, from.String(), to.String())
		if prev != nil {
			prev(from, to)
		}
	}

	g.configs[dependency] = cfg
	return cfg
}

// Invalidate drops the cached result for a call so the next caller
// recomputes it.
func (g *Guard) Invalidate(ctx context.Context, call Call) error {
	cfg := g.configFor(call.Dependency)
	if cfg.DisableCache {
		return nil
	}
	key, err := g.keyer.Key(call.ID(), call.Args)
	if err != nil {
		return err
	}
	return g.caches.Loader(cfg.CacheCategory).Invalidate(ctx, key)
}

// Breakers exposes the breaker registry for health reporting.
func (g *Guard) Breakers() *resilience.BreakerRegistry {
	return g.breakers
}

// Limiters exposes the limiter registry for health reporting.
func (g *Guard) Limiters() *resilience.LimiterRegistry {
	return g.limiters
}

// Caches exposes the cache registry for health reporting.
func (g *Guard) Caches() *cache.Registry {
	return g.caches
}

// Close releases background resources held by the cache namespaces.
func (g *Guard) Close() {
	g.caches.Close()
}
