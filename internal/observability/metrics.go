package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	progressRequestsTotal  *prometheus.CounterVec
	progressLatencySeconds *prometheus.HistogramVec
	progressErrorsTotal    *prometheus.CounterVec
	recomputeOutcomesTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for progress
// observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		progressRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_requests_total",
			Help: "Total number of progress API requests served.",
		}, []string{"method", "route", "status"})

		progressLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "progress_request_latency_seconds",
			Help:    "Latency distribution for progress API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		progressErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_errors_total",
			Help: "Total number of error responses returned by progress endpoints.",
		}, []string{"method", "route", "status"})

		recomputeOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_recompute_total",
			Help: "Recompute invocations grouped by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(progressRequestsTotal, progressLatencySeconds, progressErrorsTotal, recomputeOutcomesTotal)
	})
}

// ProgressRequests exposes the counter for progress requests.
func ProgressRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return progressRequestsTotal
}

// ProgressLatency exposes the latency histogram for progress requests.
func ProgressLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return progressLatencySeconds
}

// ProgressErrors exposes the counter for progress error responses.
func ProgressErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return progressErrorsTotal
}

// RecomputeOutcomes exposes the counter tracking recompute results.
func RecomputeOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return recomputeOutcomesTotal
}
