package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker trips after a run of consecutive failures and lets a bounded
// number of trial requests through once the open window has elapsed.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold   int
	openFor     time.Duration
	trialBudget int

	state    CircuitState
	failures int
	openedAt time.Time
	inTrial  int
	trialOK  int
	now      func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:   max(failureThreshold, 1),
		openFor:     openTimeout,
		trialBudget: max(halfOpenMaxReq, 1),
		state:       CircuitStateClosed,
		now:         time.Now,
	}
}

// Execute runs fn under the breaker. A nil breaker always runs fn.
// Errors for which countable returns false do not trip the breaker.
func (b *CircuitBreaker) Execute(fn func() error, countable func(error) bool) error {
	if b == nil {
		return fn()
	}
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil && (countable == nil || countable(err)) {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return err
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.openFor {
			return ErrCircuitOpen
		}
		b.set(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.inTrial >= b.trialBudget {
			return ErrCircuitOpen
		}
		b.inTrial++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.inTrial = max(b.inTrial-1, 0)
		b.trialOK++
		if b.trialOK >= b.trialBudget && b.inTrial == 0 {
			b.set(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.set(CircuitStateOpen)
		}
	case CircuitStateHalfOpen, CircuitStateOpen:
		b.set(CircuitStateOpen)
	}
}

// State reports half-open once the open window has elapsed, even before the
// next Allow call moves the breaker there.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openFor {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) set(state CircuitState) {
	b.state = state
	b.inTrial = 0
	b.trialOK = 0
	switch state {
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}
