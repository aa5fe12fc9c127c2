// Package metrics provides centralized Prometheus metrics registry for the slip checker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "slipcheck"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "runs_total",
		Help:      "Total number of slip runs by final status",
	}, []string{"status"})
	LegsExtractedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "legs_extracted_total",
		Help:      "Total number of legs extracted from slips",
	})
	LegsRemovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "legs_removed_total",
		Help:      "Total number of legs removed from completed runs",
	})
	StaleRunsReapedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "stale_runs_reaped_total",
		Help:      "Total number of runs failed by the stale-run reaper",
	})
)

// Histogram metrics
var (
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of a slip run from submission to verdict in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register run metrics
		registry.MustRegister(RunsTotal)
		registry.MustRegister(LegsExtractedTotal)
		registry.MustRegister(LegsRemovedTotal)
		registry.MustRegister(StaleRunsReapedTotal)
		registry.MustRegister(RunDuration)
		registry.MustRegister(APIRequestDuration)

		// Register verdict metrics
		registry.MustRegister(VerdictConfidence)
		registry.MustRegister(ConfidenceCappedTotal)
		registry.MustRegister(InvariantViolationsTotal)

		// Register enrichment metrics
		registry.MustRegister(EnrichmentSourceTotal)
		registry.MustRegister(StatsCacheHitRatio)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRun records a finished run and its duration.
func RecordRun(status string, durationSeconds float64) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(durationSeconds)
}

// RecordLegsExtracted adds to the extracted legs counter.
func RecordLegsExtracted(count int) {
	LegsExtractedTotal.Add(float64(count))
}

// RecordLegRemoved records a leg removal.
func RecordLegRemoved() {
	LegsRemovedTotal.Inc()
}

// RecordStaleRunsReaped adds to the reaped runs counter.
func RecordStaleRunsReaped(count int) {
	StaleRunsReapedTotal.Add(float64(count))
}

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, route, status string, durationSeconds float64) {
	APIRequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
}
