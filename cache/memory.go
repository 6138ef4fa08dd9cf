package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore is a bounded in-memory store. Capacity is enforced by LRU
// eviction; staleness is enforced per entry, checked on every read.
type MemoryStore struct {
	policy  Policy
	entries *lru.Cache[string, *memoryEntry]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64

	closeOnce sync.Once
	stop      chan struct{}
}

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory store with the given policy.
// Zero policy fields take the DefaultPolicy values.
func NewMemoryStore(policy Policy) *MemoryStore {
	// Apply defaults
	def := DefaultPolicy()
	if policy.DefaultTTL <= 0 {
		policy.DefaultTTL = def.DefaultTTL
	}
	if policy.MaxEntries <= 0 {
		policy.MaxEntries = def.MaxEntries
	}

	// Size is positive after defaults, so construction cannot fail.
	entries, _ := lru.New[string, *memoryEntry](policy.MaxEntries)

	return &MemoryStore{
		policy:  policy,
		entries: entries,
		stop:    make(chan struct{}),
	}
}

// Get retrieves a value. Returns (nil, false) on miss or expiry; an expired
// entry is purged on the spot so it cannot pin the LRU slot.
func (s *MemoryStore) Get(_ context.Context, key string) (any, bool) {
	entry, ok := s.entries.Get(key)
	if !ok {
		s.misses.Add(1)
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		s.entries.Remove(key)
		s.misses.Add(1)
		return nil, false
	}

	s.hits.Add(1)
	return entry.value, true
}

// Set stores a value. ttl <= 0 uses the policy default; positive overrides
// are clamped to the policy MaxTTL. A write into a full store evicts the
// least recently used entry.
func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	ttl = s.policy.EffectiveTTL(ttl)

	evicted := s.entries.Add(key, &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	if evicted {
		s.evictions.Add(1)
	}
	return nil
}

// Delete removes a value. Idempotent, no error on miss.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

// Len returns the number of entries held, including expired entries the
// sweeper has not reached yet.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}

// Capacity returns the configured entry bound.
func (s *MemoryStore) Capacity() int {
	return s.policy.MaxEntries
}

// Sweep removes all expired entries and returns how many were purged.
// Expired entries are otherwise purged lazily on access, so Sweep only
// matters for keys that stopped being read.
func (s *MemoryStore) Sweep() int {
	now := time.Now()
	purged := 0
	for _, key := range s.entries.Keys() {
		// Peek does not refresh recency.
		if entry, ok := s.entries.Peek(key); ok && now.After(entry.expiresAt) {
			s.entries.Remove(key)
			purged++
		}
	}
	return purged
}

// StartSweeper runs Sweep every interval until Close is called.
func (s *MemoryStore) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Close stops the background sweeper, if any. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
}

// Stats contains a snapshot of store effectiveness counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	Capacity  int
}

// HitRate returns hits over total lookups, or 0 with no traffic.
func (st Stats) HitRate() float64 {
	total := st.Hits + st.Misses
	if total == 0 {
		return 0
	}
	return float64(st.Hits) / float64(total)
}

// Stats returns a snapshot for health reporting.
func (s *MemoryStore) Stats() Stats {
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
		Size:      s.entries.Len(),
		Capacity:  s.policy.MaxEntries,
	}
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
