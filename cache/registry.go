package cache

import (
	"sync"
	"time"
)

// Registry maps category names to cache namespaces. Each namespace owns one
// bounded store and one loader, created lazily exactly once per name even
// under concurrent first access.
type Registry struct {
	mu         sync.Mutex
	namespaces map[Category]*namespace
}

type namespace struct {
	store  *MemoryStore
	loader *Loader
}

// NewRegistry creates an empty cache registry.
func NewRegistry() *Registry {
	return &Registry{namespaces: make(map[Category]*namespace)}
}

// Loader returns the loader for a category, creating its store with the
// category's preset policy on first use.
func (r *Registry) Loader(category Category) *Loader {
	return r.get(category).loader
}

// Store returns the store behind a category's namespace.
func (r *Registry) Store(category Category) *MemoryStore {
	return r.get(category).store
}

func (r *Registry) get(category Category) *namespace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ns, ok := r.namespaces[category]; ok {
		return ns
	}

	store := NewMemoryStore(PolicyFor(category))
	ns := &namespace{store: store, loader: NewLoader(store)}
	r.namespaces[category] = ns
	return ns
}

// Categories returns the namespaces created so far.
func (r *Registry) Categories() []Category {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Category, 0, len(r.namespaces))
	for c := range r.namespaces {
		out = append(out, c)
	}
	return out
}

// Stats returns per-namespace store statistics for health reporting.
func (r *Registry) Stats() map[Category]Stats {
	r.mu.Lock()
	namespaces := make(map[Category]*namespace, len(r.namespaces))
	for c, ns := range r.namespaces {
		namespaces[c] = ns
	}
	r.mu.Unlock()

	out := make(map[Category]Stats, len(namespaces))
	for c, ns := range namespaces {
		out[c] = ns.store.Stats()
	}
	return out
}

// StartSweepers starts a background sweeper on every namespace created so
// far. Namespaces created later purge expired entries lazily on access only.
func (r *Registry) StartSweepers(interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ns := range r.namespaces {
		ns.store.StartSweeper(interval)
	}
}

// Close stops the background sweepers of all namespaces.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ns := range r.namespaces {
		ns.store.Close()
	}
}
