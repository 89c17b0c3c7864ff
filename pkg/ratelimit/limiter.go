// Package ratelimit is the in-memory fixed-window request limiter. State is
// per-process; under horizontal scaling each instance enforces its own budget.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/infinitynet/api/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RATELIMIT")

var CodeTooManyRequests = ErrRegistry.Register(
	"TOO_MANY_REQUESTS", errx.TypeBadRequest, http.StatusTooManyRequests,
	"Muitas requisições, tente novamente mais tarde")

// ErrTooManyRequests builds the 429 error returned when a client exceeds
// its window budget.
func ErrTooManyRequests() *errx.Error {
	return ErrRegistry.New(CodeTooManyRequests)
}

const (
	DefaultWindow      = 15 * time.Minute
	DefaultMaxRequests = 100
)

// Limiter counts requests per client key in fixed windows. Stale entries are
// overwritten lazily on the key's next request; there is no background sweep.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	max     int
	size    time.Duration
	now     func() time.Time
}

type window struct {
	count     int
	resetTime time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the limiter clock.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter allowing max requests per window.
func New(max int, size time.Duration, opts ...Option) *Limiter {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if size <= 0 {
		size = DefaultWindow
	}
	l := &Limiter{
		clients: make(map[string]*window),
		max:     max,
		size:    size,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a request for key and reports whether it is within budget,
// how many requests remain in the window, and how long until the window
// resets (meaningful when not allowed).
func (l *Limiter) Allow(key string) (allowed bool, remaining int, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.After(w.resetTime) {
		w = &window{count: 1, resetTime: now.Add(l.size)}
		l.clients[key] = w
		return true, l.max - 1, 0
	}

	w.count++
	if w.count > l.max {
		return false, 0, w.resetTime.Sub(now)
	}
	return true, l.max - w.count, 0
}
