package metrics

import "github.com/prometheus/client_golang/prometheus"

// Enrichment metrics
var (
	EnrichmentSourceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "enrichment_source_total",
		Help:      "Total number of enrichment readings by source and provenance mode",
	}, []string{"source", "mode"})

	StatsCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "stats_cache_hit_ratio",
		Help:      "Hit ratio of the stats provider cache",
	})
)

// RecordEnrichmentSource records one reading from an enrichment source.
func RecordEnrichmentSource(source, mode string) {
	EnrichmentSourceTotal.WithLabelValues(source, mode).Inc()
}

// UpdateStatsCacheHitRatio sets the stats cache hit ratio gauge.
func UpdateStatsCacheHitRatio(ratio float64) {
	StatsCacheHitRatio.Set(ratio)
}
