package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_jobs_submitted_total",
			Help: "Total number of analysis jobs accepted",
		},
		[]string{"source"},
	)

	JobsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_jobs_completed_total",
			Help: "Total number of analysis jobs finished",
		},
	)

	JobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_jobs_failed_total",
			Help: "Total number of analysis jobs failed or finished with an error payload",
		},
		[]string{"reason"},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_job_duration_seconds",
			Help:    "Duration of analysis job processing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_jobs_active",
			Help: "Number of analysis jobs being processed",
		},
	)
)
