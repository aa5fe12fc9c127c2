package metrics

import "github.com/prometheus/client_golang/prometheus"

// Verdict histogram vectors
var (
	VerdictConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "verdict_confidence",
		Help:      "Confidence percentage of completed verdicts",
		Buckets:   []float64{35, 45, 55, 65, 70, 72, 75, 80, 85},
	})
)

// Verdict counter vectors
var (
	ConfidenceCappedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "confidence_capped_total",
		Help:      "Total number of verdicts lowered by the data-quality ceiling, by cap rule",
	}, []string{"reason"})

	InvariantViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "invariant_violations_total",
		Help:      "Total number of verdict invariant violations by check",
	}, []string{"check"})
)

// RecordVerdict records a completed verdict's confidence.
func RecordVerdict(confidencePct int) {
	VerdictConfidence.Observe(float64(confidencePct))
}

// RecordConfidenceCapped records a verdict lowered by the given cap rule.
func RecordConfidenceCapped(rule string) {
	ConfidenceCappedTotal.WithLabelValues(rule).Inc()
}

// RecordInvariantViolation records a failed invariant check.
func RecordInvariantViolation(check string) {
	InvariantViolationsTotal.WithLabelValues(check).Inc()
}
