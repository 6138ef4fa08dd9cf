package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting all calls.
	StateOpen
	// StateHalfOpen means the circuit is testing whether the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening.
	// Default: 5
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before a trial.
	// Default: 30 seconds
	RecoveryTimeout time.Duration

	// CooldownMultiplier scales the cooldown each time a half-open trial
	// fails. 1.0 keeps the cooldown constant.
	// Default: 1.0
	CooldownMultiplier float64

	// MaxRecoveryTimeout caps the cooldown under CooldownMultiplier growth.
	// Default: 5 minutes
	MaxRecoveryTimeout time.Duration

	// HalfOpenTrials is the number of trial calls permitted while half-open.
	// Callers beyond the budget fail fast so a recovering dependency is
	// never stampeded.
	// Default: 1
	HalfOpenTrials int

	// HalfOpenSuccesses is the number of trial successes required to close.
	// Default: 1
	HalfOpenSuccesses int

	// IsFailure determines if an error counts as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)
}

// CircuitBreaker isolates a single dependency behind a three-state machine:
// CLOSED → OPEN on the consecutive-failure threshold, OPEN → HALF_OPEN when
// the cooldown elapses, HALF_OPEN → CLOSED on trial success and back to
// OPEN on trial failure. OPEN never transitions directly to CLOSED.
type CircuitBreaker struct {
	key    string
	config CircuitBreakerConfig

	mu             sync.Mutex
	state          State
	failures       int
	openedAt       time.Time
	cooldown       time.Duration
	trialsInFlight int
	trialSuccesses int
}

// NewCircuitBreaker creates a new circuit breaker guarding the dependency
// identified by key.
func NewCircuitBreaker(key string, config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.CooldownMultiplier < 1.0 {
		config.CooldownMultiplier = 1.0
	}
	if config.MaxRecoveryTimeout <= 0 {
		config.MaxRecoveryTimeout = 5 * time.Minute
	}
	if config.HalfOpenTrials <= 0 {
		config.HalfOpenTrials = 1
	}
	if config.HalfOpenSuccesses <= 0 {
		config.HalfOpenSuccesses = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		key:      key,
		config:   config,
		state:    StateClosed,
		cooldown: config.RecoveryTimeout,
	}
}

// Execute runs the operation through the circuit breaker. When the circuit
// is open, op is never invoked and an *OpenError carrying the remaining
// cooldown is returned.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterCall(err)
	return err
}

// Key returns the dependency key this breaker guards.
func (cb *CircuitBreaker) Key() string {
	return cb.key
}

// State returns the current circuit state. The OPEN → HALF_OPEN transition
// happens on the first call after the cooldown, not on inspection.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset returns the breaker to the closed state with cleared counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	from := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.trialsInFlight = 0
	cb.trialSuccesses = 0
	cb.cooldown = cb.config.RecoveryTimeout

	if from != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, StateClosed)
	}
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.state

	if state == StateOpen {
		remaining := cb.cooldown - time.Since(cb.openedAt)
		if remaining > 0 {
			return &OpenError{Key: cb.key, RetryAfter: remaining}
		}
		cb.transition(StateHalfOpen)
		state = StateHalfOpen
	}

	if state == StateHalfOpen {
		if cb.trialsInFlight >= cb.config.HalfOpenTrials {
			// A trial is already in flight and may close the circuit
			// momentarily, so no cooldown-sized hint applies.
			return &OpenError{Key: cb.key, RetryAfter: 0}
		}
		cb.trialsInFlight++
	}

	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failure := cb.config.IsFailure(err)

	switch cb.state {
	case StateClosed:
		if failure {
			cb.failures++
			if cb.failures >= cb.config.FailureThreshold {
				cb.open()
			}
		} else {
			cb.failures = 0
		}

	case StateHalfOpen:
		cb.trialsInFlight--
		if failure {
			// Failed trial: back off the cooldown and re-open.
			next := time.Duration(float64(cb.cooldown) * cb.config.CooldownMultiplier)
			if next > cb.config.MaxRecoveryTimeout {
				next = cb.config.MaxRecoveryTimeout
			}
			cb.cooldown = next
			cb.open()
		} else {
			cb.trialSuccesses++
			if cb.trialSuccesses >= cb.config.HalfOpenSuccesses {
				cb.transition(StateClosed)
				cb.failures = 0
				cb.cooldown = cb.config.RecoveryTimeout
			}
		}
	}
}

// open moves to StateOpen and stamps the cooldown start. Callers hold cb.mu.
func (cb *CircuitBreaker) open() {
	cb.openedAt = time.Now()
	cb.transition(StateOpen)
}

// transition changes state and fires the hook. Callers hold cb.mu.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if to == StateHalfOpen {
		cb.trialsInFlight = 0
		cb.trialSuccesses = 0
	}
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// BreakerMetrics contains a snapshot of circuit breaker state.
type BreakerMetrics struct {
	Key      string
	State    State
	Failures int
	OpenedAt time.Time
	Cooldown time.Duration
}

// Metrics returns a snapshot for health reporting.
func (cb *CircuitBreaker) Metrics() BreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return BreakerMetrics{
		Key:      cb.key,
		State:    cb.state,
		Failures: cb.failures,
		OpenedAt: cb.openedAt,
		Cooldown: cb.cooldown,
	}
}
