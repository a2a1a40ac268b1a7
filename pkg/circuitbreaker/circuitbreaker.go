// Package circuitbreaker guards calls to remote providers.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreaker struct {
	name             string
	maxFailures      int
	resetTimeout     time.Duration
	failureCount     int
	lastFailureTime  time.Time
	state            State
	halfOpenInFlight bool
	mu               sync.Mutex

	// IsFailure decides which errors count against the breaker. nil counts all.
	IsFailure func(error) bool
	// OnStateChange is called outside the lock after a transition.
	OnStateChange func(name string, from, to State)
}

func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// Execute runs fn unless the breaker is open. In half-open state a single
// probe is let through; concurrent callers get ErrCircuitOpen until it returns.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.before(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.after(err)
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	var from, to State
	changed := false
	defer func() {
		cb.mu.Unlock()
		if changed {
			cb.notify(from, to)
		}
	}()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailureTime) <= cb.resetTimeout {
			return ErrCircuitOpen
		}
		from, to, changed = StateOpen, StateHalfOpen, true
		cb.state = StateHalfOpen
		cb.failureCount = 0
		cb.halfOpenInFlight = true
	case StateHalfOpen:
		if cb.halfOpenInFlight {
			return ErrCircuitOpen
		}
		cb.halfOpenInFlight = true
	}
	return nil
}

func (cb *CircuitBreaker) after(err error) {
	failed := err != nil && (cb.IsFailure == nil || cb.IsFailure(err))

	cb.mu.Lock()
	from := cb.state
	if cb.state == StateHalfOpen {
		cb.halfOpenInFlight = false
	}
	if failed {
		cb.failureCount++
		cb.lastFailureTime = time.Now()
		if cb.failureCount >= cb.maxFailures || cb.state == StateHalfOpen {
			cb.state = StateOpen
		}
	} else {
		cb.failureCount = 0
		cb.state = StateClosed
	}
	to := cb.state
	cb.mu.Unlock()

	if from != to {
		cb.notify(from, to)
	}
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.OnStateChange != nil {
		cb.OnStateChange(cb.name, from, to)
	}
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Name() string { return cb.name }
