package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchup_aggregation_skipped_total",
		Help: "Raw set records skipped during aggregation, by reason",
	}, []string{"reason"})

	matchupsEmitted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchup_table_rows",
		Help: "Rows in the most recent matchup table build",
	})

	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchup_rebuild_duration_seconds",
		Help:    "Duration of full matchup table rebuilds",
		Buckets: prometheus.DefBuckets,
	})

	predictionsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchup_predictions_total",
		Help: "Total number of predictions served",
	})

	predictionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchup_prediction_cache_hits_total",
		Help: "Predictions answered from cache",
	})

	predictionCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchup_prediction_cache_misses_total",
		Help: "Predictions computed because the cache had no entry",
	})

	directionDisagreements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchup_prediction_disagreements_total",
		Help: "Predictions whose forward and reverse labels disagreed",
	})
)
