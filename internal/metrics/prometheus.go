package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the feature pipeline

var (
	// Materialization metrics
	MaterializeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_materialize_runs_total",
			Help: "Total number of materialization runs",
		},
		[]string{"status"},
	)

	MaterializeRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nba_materialize_run_duration_seconds",
			Help:    "Duration of materialization runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	FeatureRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_feature_rows_total",
			Help: "Feature rows handled per table and action",
		},
		[]string{"table", "action"},
	)

	RowErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_row_errors_total",
			Help: "Per-row failures during materialization",
		},
		[]string{"stage"},
	)

	// Inference metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_predictions_total",
			Help: "Total number of predictions produced",
		},
		[]string{"model", "status"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_prediction_duration_seconds",
			Help:    "Duration of single-game predictions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	SchemaDriftTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_schema_drift_total",
			Help: "Features the schema expected but extraction did not produce",
		},
		[]string{"model"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_last_successful_run_timestamp",
			Help: "Timestamp of the last successful materialization run",
		},
	)
)

// RecordMaterializeRun records the outcome of a full materialization run
func RecordMaterializeRun(status string, duration float64) {
	MaterializeRunsTotal.WithLabelValues(status).Inc()
	MaterializeRunDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordFeatureRows records rows handled for one table
func RecordFeatureRows(table, action string, count int) {
	FeatureRowsTotal.WithLabelValues(table, action).Add(float64(count))
}

// RecordRowError records one per-row materialization failure
func RecordRowError(stage string) {
	RowErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordPrediction records a prediction attempt
func RecordPrediction(model, status string, duration float64) {
	PredictionsTotal.WithLabelValues(model, status).Inc()
	PredictionDuration.WithLabelValues(model).Observe(duration)
}

// RecordSchemaDrift records features filled with defaults during alignment
func RecordSchemaDrift(model string, missing int) {
	SchemaDriftTotal.WithLabelValues(model).Add(float64(missing))
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
