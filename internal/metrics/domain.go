package metrics

import "github.com/prometheus/client_golang/prometheus"

// Schema and filter Prometheus metrics.
var (
	SchemaDerivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lowcms",
			Name:      "schema_derivations_total",
			Help:      "Total number of schema derivations",
		},
		[]string{"mode"}, // "sample" / "content"
	)

	SchemaCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lowcms",
			Name:      "schema_cache_total",
			Help:      "Derived schema cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	FilterMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lowcms",
			Name:      "filter_mutations_total",
			Help:      "Total number of filter tree mutations",
		},
		[]string{"operator"},
	)

	FilterSearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lowcms",
			Name:      "filter_searches_total",
			Help:      "Total number of record searches",
		},
	)

	FilterMatchedRecords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lowcms",
			Name:      "filter_matched_records",
			Help:      "Number of records matched per search",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		},
	)
)

var domainMetricsRegistered bool

// RegisterDomainMetrics registers schema and filter metrics. Must be called once from main.
func RegisterDomainMetrics() {
	if domainMetricsRegistered {
		return
	}
	prometheus.MustRegister(SchemaDerivationsTotal)
	prometheus.MustRegister(SchemaCacheTotal)
	prometheus.MustRegister(FilterMutationsTotal)
	prometheus.MustRegister(FilterSearchesTotal)
	prometheus.MustRegister(FilterMatchedRecords)
	domainMetricsRegistered = true
}
