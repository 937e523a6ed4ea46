package upstream

import (
	"sync"
	"time"
)

type CircuitBreaker struct {
	mu              sync.RWMutex
	failureCount    int
	successCount    int
	lastFailureTime time.Time
	state           CircuitState
	threshold       int
	timeout         time.Duration
	now             func() time.Time
}

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// NewCircuitBreaker opens after threshold consecutive failures and probes
// again once timeout has elapsed. A threshold <= 0 disables it.
func NewCircuitBreaker(threshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		timeout:   timeout,
		state:     StateClosed,
		now:       time.Now,
	}
}

func (cb *CircuitBreaker) Call(fn func() error) error {
	if cb == nil || cb.threshold <= 0 {
		return fn()
	}

	cb.mu.Lock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailureTime) > cb.timeout {
			cb.state = StateHalfOpen
			cb.failureCount = 0
			cb.successCount = 0
		} else {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
	}

	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failureCount++
		cb.lastFailureTime = cb.now()

		if cb.state == StateHalfOpen || cb.failureCount >= cb.threshold {
			cb.state = StateOpen
		}
		return err
	}

	cb.successCount++
	if cb.state == StateClosed {
		cb.failureCount = 0
	}
	if cb.state == StateHalfOpen && cb.successCount >= 2 {
		cb.state = StateClosed
		cb.failureCount = 0
		cb.successCount = 0
	}

	return nil
}

// Allows reports whether a call made now would reach the wrapped function.
// An open breaker whose timeout has elapsed allows the next probe.
func (cb *CircuitBreaker) Allows() bool {
	if cb == nil || cb.threshold <= 0 {
		return true
	}
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	if cb.state != StateOpen {
		return true
	}
	return cb.now().Sub(cb.lastFailureTime) > cb.timeout
}

func (cb *CircuitBreaker) GetState() CircuitState {
	if cb == nil {
		return StateClosed
	}
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
}
