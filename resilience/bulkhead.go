package resilience

import (
	"context"
	"sync"
	"time"
)

// BulkheadConfig configures a per-dependency concurrency cap.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of in-flight calls against one
	// dependency. LLM providers in particular degrade badly when flooded
	// with parallel requests.
	// Default: 10
	MaxConcurrent int

	// MaxWait bounds how long an arrival waits for a slot before it is
	// shed with ErrBulkheadFull.
	// Default: 0 (shed immediately)
	MaxWait time.Duration
}

// Bulkhead caps in-flight calls for a single dependency key so a slow
// upstream cannot absorb every worker in the process.
type Bulkhead struct {
	key    string
	config BulkheadConfig
	slots  chan struct{}

	mu       sync.Mutex
	inFlight int
	peak     int
	shed     int64
}

// NewBulkhead creates a bulkhead for one dependency key.
func NewBulkhead(key string, config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}

	return &Bulkhead{
		key:    key,
		config: config,
		slots:  make(chan struct{}, config.MaxConcurrent),
	}
}

// Acquire claims an in-flight slot, waiting up to MaxWait when the cap is
// reached. It returns ErrBulkheadFull when the call is shed.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		b.admitted()
		return nil
	default:
	}

	if b.config.MaxWait <= 0 {
		b.rejected()
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	select {
	case b.slots <- struct{}{}:
		b.admitted()
		return nil
	case <-timer.C:
		b.rejected()
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot claimed by Acquire.
func (b *Bulkhead) Release() {
	select {
	case <-b.slots:
		b.mu.Lock()
		b.inFlight--
		b.mu.Unlock()
	default:
		// Release without a matching Acquire.
	}
}

// Execute runs op while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

func (b *Bulkhead) admitted() {
	b.mu.Lock()
	b.inFlight++
	if b.inFlight > b.peak {
		b.peak = b.inFlight
	}
	b.mu.Unlock()
}

func (b *Bulkhead) rejected() {
	b.mu.Lock()
	b.shed++
	b.mu.Unlock()
}

// BulkheadMetrics is a snapshot for health reporting.
type BulkheadMetrics struct {
	Key           string
	InFlight      int
	Peak          int
	Available     int
	MaxConcurrent int
	Shed          int64
}

// Metrics returns a snapshot for health reporting.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadMetrics{
		Key:           b.key,
		InFlight:      b.inFlight,
		Peak:          b.peak,
		Available:     b.config.MaxConcurrent - b.inFlight,
		MaxConcurrent: b.config.MaxConcurrent,
		Shed:          b.shed,
	}
}
