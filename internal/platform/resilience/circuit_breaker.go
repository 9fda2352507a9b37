// Package resilience guards upstream HTTP APIs with circuit breakers.
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
	CircuitStateHalfOpen CircuitState = "half_open"
	CircuitStateOpen     CircuitState = "open"
)

// StateListener observes state changes. It is called with the breaker locked
// and must not call back into it.
type StateListener func(from, to CircuitState)

// CircuitBreaker counts failures of one upstream. Every state change starts a
// new generation; outcomes reported for an older generation are dropped so a
// slow call cannot reopen or close a breaker that has since moved on.
//
// A nil *CircuitBreaker runs every call.
type CircuitBreaker struct {
	name     string
	cfg      CircuitBreakerConfig
	listener StateListener
	now      func() time.Time

	mu         sync.Mutex
	state      CircuitState
	generation uint64
	failures   int
	trials     int
	successes  int
	reopenAt   time.Time
}

// NewCircuitBreakerFromConfig returns nil when cfg is disabled.
func NewCircuitBreakerFromConfig(name string, cfg CircuitBreakerConfig, listener StateListener) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return &CircuitBreaker{
		name:     name,
		cfg:      cfg.withDefaults(),
		listener: listener,
		now:      time.Now,
		state:    CircuitStateClosed,
	}
}

func (b *CircuitBreaker) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Execute runs fn unless the breaker rejects it with ErrCircuitOpen.
// isFailure picks the errors that count against the upstream; nil counts all.
// fn's error is returned unchanged.
func (b *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if b == nil {
		return fn()
	}
	gen, err := b.admit()
	if err != nil {
		return err
	}

	err = fn()
	failed := err != nil && (isFailure == nil || isFailure(err))
	b.report(gen, !failed)
	return err
}

// State reports the current state, moving an expired open breaker to half-open.
func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick(b.now())
	return b.state
}

func (b *CircuitBreaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tick(b.now())
	switch b.state {
	case CircuitStateOpen:
		return 0, ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.trials >= b.cfg.HalfOpenMaxReq {
			return 0, ErrCircuitOpen
		}
		b.trials++
	}
	return b.generation, nil
}

func (b *CircuitBreaker) report(gen uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.tick(now)
	if gen != b.generation {
		return
	}

	switch b.state {
	case CircuitStateClosed:
		if ok {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.moveTo(CircuitStateOpen, now)
		}
	case CircuitStateHalfOpen:
		if !ok {
			b.moveTo(CircuitStateOpen, now)
			return
		}
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxReq {
			b.moveTo(CircuitStateClosed, now)
		}
	}
}

// tick expires the open window. Callers hold mu.
func (b *CircuitBreaker) tick(now time.Time) {
	if b.state == CircuitStateOpen && !now.Before(b.reopenAt) {
		b.moveTo(CircuitStateHalfOpen, now)
	}
}

func (b *CircuitBreaker) moveTo(to CircuitState, now time.Time) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.generation++
	b.failures, b.trials, b.successes = 0, 0, 0
	b.reopenAt = time.Time{}
	if to == CircuitStateOpen {
		b.reopenAt = now.Add(b.cfg.OpenTimeout)
	}
	if b.listener != nil {
		b.listener(from, to)
	}
}
