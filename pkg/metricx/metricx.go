// Package metricx exposes Prometheus instrumentation for the HTTP layer,
// the circuit breakers and the cache facade.
package metricx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/infinitynet/api/pkg/breaker"
)

// Metrics owns the process registry and the collectors wired through the app.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	breakerState  *prometheus.GaugeVec
	cacheFallback prometheus.Counter
	loginFailures prometheus.Counter
}

// New builds the registry with the standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state per service (0=closed, 1=open, 2=half-open).",
		}, []string{"service"}),
		cacheFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_fallback_total",
			Help: "Times the cache facade downgraded to the in-process store.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "login_failures_total",
			Help: "Failed login attempts across every identity variant.",
		}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.breakerState, m.cacheFallback, m.loginFailures)
	return m
}

// Handler serves the /metrics endpoint under Fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// BreakerHook returns a state-change callback for breaker.WithStateChange.
func (m *Metrics) BreakerHook(service string) func(from, to breaker.State) {
	gauge := m.breakerState.WithLabelValues(service)
	gauge.Set(float64(breaker.StateClosed))
	return func(_, to breaker.State) {
		gauge.Set(float64(to))
	}
}

// CacheFallbackHook returns the callback for cachex.WithFallbackHook.
func (m *Metrics) CacheFallbackHook() func() {
	return m.cacheFallback.Inc
}

// CountLoginFailure records a failed login attempt.
func (m *Metrics) CountLoginFailure() {
	m.loginFailures.Inc()
}
