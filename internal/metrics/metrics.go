package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OptimizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptforge_optimizations_total",
		Help: "Total optimization batches processed",
	}, []string{"mode"})

	BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptforge_batch_duration_seconds",
		Help:    "Optimization batch duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"mode"})

	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptforge_provider_calls_total",
		Help: "Total provider calls",
	}, []string{"provider", "status"})

	FallbackVariantsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promptforge_fallback_variants_total",
		Help: "Variants produced by deterministic local templates",
	})

	DeadlineSubstitutionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promptforge_deadline_substitutions_total",
		Help: "Speed mode batches that hit the global deadline",
	})

	InsightWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptforge_insight_writes_total",
		Help: "Background insight persistence attempts",
	}, []string{"status"})
)
