// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvchat_datasets_loaded_total",
			Help: "Total number of datasets loaded successfully",
		},
		[]string{"source"},
	)

	DatasetLoadsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvchat_dataset_loads_failed_total",
			Help: "Total number of failed dataset loads",
		},
		[]string{"source", "error_code"},
	)

	QueriesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvchat_queries_completed_total",
			Help: "Total number of queries answered by the engine",
		},
		[]string{"result_kind"},
	)

	QueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvchat_queries_failed_total",
			Help: "Total number of failed queries",
		},
		[]string{"error_code"},
	)

	EngineCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "csvchat_engine_call_duration_seconds",
			Help: "Duration of external engine calls in seconds",
		},
	)
)
