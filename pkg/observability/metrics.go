// Package observability provides observability utilities
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// WarehouseQueries counts warehouse round-trips
	WarehouseQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbi_warehouse_queries_total",
			Help: "Total number of warehouse queries executed",
		},
		[]string{"driver", "status"}, // status: success, failed
	)

	// WarehouseQueryDuration measures warehouse query duration in seconds
	WarehouseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rbi_warehouse_query_duration_seconds",
			Help:    "Warehouse query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"driver"},
	)

	// QueryCacheRequests counts query cache lookups
	QueryCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbi_query_cache_requests_total",
			Help: "Total number of query cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)

	// QueryCacheInvalidations counts invalidated cache entries
	QueryCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbi_query_cache_invalidations_total",
			Help: "Total number of query cache entries invalidated",
		},
	)

	// PageRenders counts dashboard page renders
	PageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbi_page_renders_total",
			Help: "Total number of dashboard page renders",
		},
		[]string{"page", "status"},
	)

	// TrainingRuns counts training pipeline runs
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbi_training_runs_total",
			Help: "Total number of training pipeline runs",
		},
		[]string{"status"},
	)

	// TrainingDuration measures training pipeline duration in seconds
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rbi_training_duration_seconds",
			Help:    "Training pipeline duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// ModelScore tracks the latest evaluation scores per model
	ModelScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rbi_model_score",
			Help: "Latest evaluation score of a trained model",
		},
		[]string{"model", "metric"},
	)

	// TrainingTasksEnqueued counts enqueued training tasks
	TrainingTasksEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbi_training_tasks_enqueued_total",
			Help: "Total number of training tasks enqueued",
		},
		[]string{"trigger"},
	)
)

// RecordWarehouseQuery records a warehouse round-trip
func RecordWarehouseQuery(driver string, err error, duration float64) {
	status := "success"
	if err != nil {
		status = "failed"
	}

	WarehouseQueries.WithLabelValues(driver, status).Inc()
	WarehouseQueryDuration.WithLabelValues(driver).Observe(duration)
}

// RecordCacheHit records a query cache hit
func RecordCacheHit() {
	QueryCacheRequests.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a query cache miss
func RecordCacheMiss() {
	QueryCacheRequests.WithLabelValues("miss").Inc()
}

// RecordCacheInvalidations records invalidated entries
func RecordCacheInvalidations(count int) {
	QueryCacheInvalidations.Add(float64(count))
}

// RecordPageRender records a page render
func RecordPageRender(page string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}

	PageRenders.WithLabelValues(page, status).Inc()
}

// RecordTrainingRun records a finished training run
func RecordTrainingRun(status string, duration float64) {
	TrainingRuns.WithLabelValues(status).Inc()
	TrainingDuration.Observe(duration)
}

// RecordModelScore records an evaluation score
func RecordModelScore(model, metric string, value float64) {
	ModelScore.WithLabelValues(model, metric).Set(value)
}

// RecordTrainingEnqueued records an enqueued training task
func RecordTrainingEnqueued(trigger string) {
	TrainingTasksEnqueued.WithLabelValues(trigger).Inc()
}
