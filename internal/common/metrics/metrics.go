// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_training_runs_total",
			Help: "Total number of training runs by scope and result",
		},
		[]string{"scope", "status"},
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"scope"},
	)

	ModelActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_model_activations_total",
			Help: "Total number of model activations by scope",
		},
		[]string{"scope"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_predictions_total",
			Help: "Total number of predictions by the scope of the model used",
		},
		[]string{"model_scope"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_prediction_duration_seconds",
			Help:    "Duration of prediction requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	EligibilityChecksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_eligibility_checks_total",
			Help: "Total number of eligibility evaluations",
		},
	)

	WeightCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_weight_cache_hits_total",
			Help: "Active-model weight cache hits",
		},
	)

	WeightCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_weight_cache_misses_total",
			Help: "Active-model weight cache misses",
		},
	)
)
