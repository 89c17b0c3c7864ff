// Package breaker implements the closed/open/half-open circuit breaker
// guarding repository calls in the service layer.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// State is the circuit state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the state name.
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

// ErrOpen is returned without invoking the wrapped operation while the
// circuit is open and the reset timeout has not elapsed.
var ErrOpen = errors.New("circuit breaker is open")

const (
	DefaultFailureThreshold = 5
	DefaultResetTimeout     = 30 * time.Second
)

// Breaker tracks consecutive failures of an operation class. One instance
// is shared by all operations of a service.
type Breaker struct {
	mu            sync.Mutex
	state         State
	failureCount  int
	lastFailure   time.Time
	threshold     int
	resetTimeout  time.Duration
	now           func() time.Time
	onStateChange func(from, to State)
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithThreshold sets the consecutive-failure count that opens the circuit.
func WithThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithResetTimeout sets how long the circuit stays open before a trial
// call is allowed.
func WithResetTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.resetTimeout = d
		}
	}
}

// WithClock overrides the breaker clock.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

// WithStateChange registers a callback fired on every state transition.
func WithStateChange(fn func(from, to State)) Option {
	return func(b *Breaker) {
		b.onStateChange = fn
	}
}

// New creates a breaker with the default threshold (5) and reset timeout (30s).
func New(opts ...Option) *Breaker {
	b := &Breaker{
		state:        StateClosed,
		threshold:    DefaultFailureThreshold,
		resetTimeout: DefaultResetTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current state, applying the lazy open -> half-open
// transition if the reset timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do runs fn through the breaker. While open, fn is not invoked and ErrOpen
// is returned. fn's own error is propagated unmodified after being recorded.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

// Execute runs fn through the breaker, returning its result. Method type
// parameters are not supported, hence the package-level function.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var out T
	err := b.Do(func() error {
		var innerErr error
		out, innerErr = fn()
		return innerErr
	})
	return out, err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}
	if b.now().Sub(b.lastFailure) > b.resetTimeout {
		b.transition(StateHalfOpen)
		return nil
	}
	return ErrOpen
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	b.transition(StateClosed)
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailure = b.now()

	if b.state == StateHalfOpen || b.failureCount >= b.threshold {
		b.transition(StateOpen)
	}
}

// transition assumes b.mu is held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onStateChange != nil {
		b.onStateChange(from, to)
	}
}
