package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation and strategy HTTP handlers
	RecommendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reco_recommend_latency_seconds",
		Help:    "Latency of recommendation handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Recommendations answered from the popularity ranking
	RecommendFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_recommend_fallback_total",
		Help: "Recommendations served by the popularity fallback",
	}, []string{"source"})

	DirectivesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_strategy_directives_total",
		Help: "Strategy directives derived, by action kind",
	}, []string{"action"})

	DirectiveCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_strategy_directive_cache_total",
		Help: "Directive cache lookups by result",
	}, []string{"result"})

	RebuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reco_similarity_rebuild_seconds",
		Help:    "Duration of similarity snapshot rebuilds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	SnapshotEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reco_similarity_snapshot_entries",
		Help: "Similarity entries in the active snapshot",
	})

	RatingsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reco_ratings_ingested_total",
		Help: "Ratings accepted by the ingest endpoint",
	})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendFallbacks,
		DirectivesTotal,
		DirectiveCache,
		RebuildDuration,
		SnapshotEntries,
		RatingsIngested,
	)
}
