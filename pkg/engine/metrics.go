package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retrainsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wordchain",
		Subsystem: "engine",
		Name:      "retrains_total",
		Help:      "Total full retrains of the transition tables",
	})

	retrainDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wordchain",
		Subsystem: "engine",
		Name:      "retrain_duration_seconds",
		Help:      "Time taken to rebuild the transition tables",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	// Labels: order (1, 2)
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wordchain",
		Subsystem: "engine",
		Name:      "predictions_total",
		Help:      "Total predictions served, by table order used",
	}, []string{"order"})

	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wordchain",
		Subsystem: "engine",
		Name:      "prediction_duration_seconds",
		Help:      "Prediction latency in seconds",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	sourcesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wordchain",
		Subsystem: "engine",
		Name:      "sources",
		Help:      "Number of registered sources",
	})

	activeSourcesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wordchain",
		Subsystem: "engine",
		Name:      "active_sources",
		Help:      "Number of active sources",
	})

	sourceReadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wordchain",
		Subsystem: "engine",
		Name:      "source_read_failures_total",
		Help:      "Source files skipped because they could not be read",
	})
)
