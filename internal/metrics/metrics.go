package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DownloadsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_companion_downloads_started_total",
		Help: "Total number of stream downloads started",
	})

	DownloadsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_companion_downloads_completed_total",
		Help: "Total number of stream downloads completed",
	})

	DownloadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_companion_downloads_failed_total",
		Help: "Total number of stream downloads failed",
	})

	SegmentsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_companion_segments_fetched_total",
		Help: "Total number of stream segments fetched",
	})

	SegmentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_companion_segments_failed_total",
		Help: "Total number of stream segments that failed after retries",
	})

	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_companion_jobs_enqueued_total",
		Help: "Total number of processing jobs enqueued",
	})

	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_companion_jobs_completed_total",
		Help: "Total number of processing jobs completed",
	})

	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_companion_jobs_failed_total",
		Help: "Total number of processing jobs failed",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lecture_companion_stage_duration_seconds",
		Help:    "Pipeline stage duration in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"stage"})
)
