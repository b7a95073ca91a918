// Package server provides the HTTP API of the π calculator.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the request gauges next to the calculation metrics
// recorded by the pi package.
type Metrics struct {
	handler http.Handler
}

var (
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "picalc_active_requests",
		Help: "Current number of active requests",
	})
	totalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "picalc_requests_total",
		Help: "Total number of requests received",
	})
	shortResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "picalc_short_results_total",
		Help: "Calculations that did not reach the requested precision",
	}, []string{"algorithm"})
)

func NewMetrics() *Metrics {
	return &Metrics{handler: promhttp.Handler()}
}

// IncrementActiveRequests bumps the active gauge and the request counter.
func (m *Metrics) IncrementActiveRequests() {
	activeRequests.Inc()
	totalRequests.Inc()
}

func (m *Metrics) DecrementActiveRequests() {
	activeRequests.Dec()
}

// RecordShortResult counts a result below the requested precision.
func (m *Metrics) RecordShortResult(tag string) {
	shortResults.WithLabelValues(tag).Inc()
}

// WritePrometheus serves the registry in Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		next(w, r)
	}
}
