package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the API's Prometheus collectors on a private registry so
// tests and multiple instances never collide on the default registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loginFailures   prometheus.Counter
}

// NewMetrics returns a Metrics with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	return &Metrics{
		registry: registry,
		requestsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "dastyar_http_requests_total",
			Help: "Total HTTP requests by route, method, and status code",
		}, []string{"route", "method", "code"}),
		requestDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dastyar_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		loginFailures: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "dastyar_login_failures_total",
			Help: "Total failed login attempts (OTP and password)",
		}),
	}
}

// Handler serves the /metrics endpoint from this Metrics' registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLoginFailure increments the failed-login counter.
func (m *Metrics) RecordLoginFailure() {
	m.loginFailures.Inc()
}

// statusRecorder captures the response code written by the handler chain.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency. route is the registered
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
