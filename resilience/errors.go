package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimited is returned when admission is denied by the rate limiter.
	ErrRateLimited = errors.New("resilience: rate limit exceeded")

	// ErrRetriesExhausted is returned when the retry attempt budget is consumed.
	ErrRetriesExhausted = errors.New("resilience: retries exhausted")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when a single attempt times out.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// OpenError reports a call that was rejected because the breaker for a
// dependency is open. The underlying operation was never invoked.
type OpenError struct {
	// Key identifies the dependency whose breaker rejected the call.
	Key string

	// RetryAfter is the remaining cooldown before a recovery trial is allowed.
	RetryAfter time.Duration
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("resilience: circuit %q open, retry after %s", e.Key, e.RetryAfter)
}

// Is reports ErrCircuitOpen so callers can match with errors.Is.
func (e *OpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

// LimitError reports a call denied by the caller's own admission budget.
// It is distinct from OpenError: the dependency may be perfectly healthy.
type LimitError struct {
	// Key identifies the dependency whose limiter denied the call.
	Key string

	// RetryAfter is a hint for when admission should next succeed.
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("resilience: rate limit for %q exceeded, retry after %s", e.Key, e.RetryAfter)
}

// Is reports ErrRateLimited so callers can match with errors.Is.
func (e *LimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// ExhaustedError reports that all retry attempts failed. It wraps the last
// underlying error and carries the total attempt count.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("resilience: %d attempts exhausted: %v", e.Attempts, e.Last)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Is reports ErrRetriesExhausted so callers can match with errors.Is.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

// nonRetryable marks an error as permanent for the default classifier.
type nonRetryable struct {
	err error
}

func (e *nonRetryable) Error() string { return e.err.Error() }

func (e *nonRetryable) Unwrap() error { return e.err }

// NonRetryable marks err as permanent. The default classifier will not
// consume retry budget on it. Validation and authorization failures from
// upstream clients should be wrapped this way.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &nonRetryable{err: err}
}

// IsRetryable is the default retryable classifier.
//
// Errors marked NonRetryable are permanent. Circuit-open and rate-limited
// signals never consume retry budget: they describe this process's own
// gating, not a transient upstream fault. Context cancellation means the
// caller gave up. Everything else, including attempt timeouts, is presumed
// transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var permanent *nonRetryable
	if errors.As(err, &permanent) {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrRateLimited) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
