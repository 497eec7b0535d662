package redis

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without contacting Redis while the breaker is open
var ErrCircuitOpen = errors.New("redis circuit open")

// CircuitState represents the current state of the circuit breaker
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops OTP store calls after repeated Redis failures so a
// down cache costs one fast error per request instead of a dial timeout.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CircuitState
	failures         int
	failureThreshold int
	resetTimeout     time.Duration
	lastFailure      time.Time
	now              func() time.Time
	onStateChange    func(from, to CircuitState)
}

// NewCircuitBreaker creates a breaker; zero values default to 5 failures and 30s
func NewCircuitBreaker(threshold int, resetTimeout time.Duration, onStateChange func(from, to CircuitState)) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		failureThreshold: threshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		onStateChange:    onStateChange,
	}
}

// Allow reports whether a call may go through. An open breaker lets a single
// probe through once the reset timeout has passed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
			cb.transitionTo(StateHalfOpen)
			return true
		}
		return false
	default:
		return false
	}
}

// Record updates the breaker with the outcome of a call
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		cb.transitionTo(StateClosed)
		return
	}

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		cb.transitionTo(StateOpen)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// must be called with lock held
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState
	if cb.onStateChange != nil && oldState != newState {
		cb.onStateChange(oldState, newState)
	}
}
