// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_evaluations_total",
			Help: "Total number of pair evaluations by direction",
		},
		[]string{"direction"},
	)

	MatchRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_rejections_total",
			Help: "Total number of hard-filter rejections by direction and reason",
		},
		[]string{"direction", "reason"},
	)

	MatchPairErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_pair_errors_total",
			Help: "Total number of pair evaluations skipped due to store errors",
		},
		[]string{"direction"},
	)

	MatchBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "match_batch_duration_seconds",
			Help: "Duration of batch match runs in seconds",
		},
		[]string{"direction"},
	)

	MatchBatchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_batch_results",
			Help:    "Number of results returned per batch match run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"direction"},
	)
)
