package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the value for a cache key on miss.
type ComputeFunc func(ctx context.Context) (any, error)

// Loader wraps a Store with single-flight miss handling: concurrent callers
// asking for the same missing key share one compute instead of stampeding
// the upstream.
type Loader struct {
	store Store
	group singleflight.Group
}

// NewLoader creates a loader over the given store.
func NewLoader(store Store) *Loader {
	return &Loader{store: store}
}

// Store returns the underlying store.
func (l *Loader) Store() Store {
	return l.store
}

// GetOrCompute returns the cached value for key when one is live, otherwise
// computes it, stores it with ttl (ttl <= 0 uses the store default) and
// returns it. The boolean reports whether the value came from the cache.
//
// Concurrent misses on the same key collapse to a single compute; waiters
// receive the leader's result, including its error. Compute errors are
// never cached, so the next caller retries the compute.
func (l *Loader) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (any, bool, error) {
	if l.store == nil {
		return nil, false, ErrNilStore
	}
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	if value, ok := l.store.Get(ctx, key); ok {
		return value, true, nil
	}

	value, err, _ := l.group.Do(key, func() (any, error) {
		// A concurrent flight may have stored the value between our miss
		// and acquiring the flight.
		if value, ok := l.store.Get(ctx, key); ok {
			return value, nil
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		if setErr := l.store.Set(ctx, key, value, ttl); setErr != nil {
			return nil, setErr
		}
		return value, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, false, nil
}

// Invalidate removes key from the store so the next caller recomputes.
func (l *Loader) Invalidate(ctx context.Context, key string) error {
	if l.store == nil {
		return ErrNilStore
	}
	return l.store.Delete(ctx, key)
}
