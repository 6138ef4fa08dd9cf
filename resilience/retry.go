package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// JitterMode controls how retry delays are randomized to avoid
// synchronized retry storms across many callers.
type JitterMode int

const (
	// JitterNone uses the computed delay unchanged.
	JitterNone JitterMode = iota
	// JitterUniform replaces the delay with a uniform random value in [0, delay].
	JitterUniform
	// JitterProportional scales the delay by a random factor in [0.5, 1.5).
	JitterProportional
)

// RetryConfig configures the retry behavior. It is immutable once handed
// to NewRetry; supply one per call site.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	// Default: 100ms
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries, before jitter.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// Jitter selects how delays are randomized.
	// Default: JitterNone
	Jitter JitterMode

	// RetryIf classifies an error as retryable. Non-retryable errors
	// propagate immediately without consuming further budget.
	// Default: IsRetryable
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt, making individual
	// attempts observable for logging and metrics.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry executes operations with bounded attempts and backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = IsRetryable
	}

	return &Retry{config: config}
}

// Execute runs the operation with retry logic.
//
// A non-retryable failure is returned unchanged. When the attempt budget
// is exhausted against a retryable failure, the error is an
// *ExhaustedError wrapping the last underlying error. The caller's
// context deadline bounds the whole loop: it is checked between attempts
// and during backoff waits, so a doomed final attempt is never started.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}

		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.delay(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return &ExhaustedError{Attempts: r.config.MaxAttempts, Last: lastErr}
}

// delay computes the backoff before the retry following the given attempt:
// min(MaxDelay, BaseDelay × Multiplier^(attempt-1)), then jitter.
func (r *Retry) delay(attempt int) time.Duration {
	multiplier := math.Pow(r.config.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(r.config.BaseDelay) * multiplier)

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	switch r.config.Jitter {
	case JitterUniform:
		if delay > 0 {
			// #nosec G404 -- jitter is non-cryptographic timing variance.
			delay = time.Duration(rand.Int64N(int64(delay) + 1))
		}
	case JitterProportional:
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay = time.Duration(float64(delay) * (0.5 + rand.Float64()))
	}

	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
