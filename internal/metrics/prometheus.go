package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the QB sync pipeline

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflqb_api_calls_total",
			Help: "Total number of ESPN API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nflqb_api_call_duration_seconds",
			Help:    "Duration of ESPN API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nflqb_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nflqb_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// Sync metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflqb_sync_runs_total",
			Help: "Total number of sync pipeline runs",
		},
		[]string{"status"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nflqb_sync_duration_seconds",
			Help:    "Duration of full sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)

	EntitiesUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflqb_entities_upserted_total",
			Help: "Total entities written via upsert, by entity type",
		},
		[]string{"entity"},
	)

	RowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflqb_rows_skipped_total",
			Help: "Derived rows skipped at persistence, by entity and reason",
		},
		[]string{"entity", "reason"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nflqb_uptime_seconds",
			Help: "Seconds since process start",
		},
	)
)
