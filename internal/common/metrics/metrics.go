// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ProposalsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_proposals_generated_total",
			Help: "Total number of proposals generated, by sector",
		},
		[]string{"sector"},
	)

	ImportFieldsDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_import_fields_detected",
			Help:    "Number of fields detected per analyzed import",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	RedFlagsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_red_flags_emitted_total",
			Help: "Total number of red flags emitted by audits, by severity",
		},
		[]string{"severity"},
	)

	ProvenCaseCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_proven_case_cache_total",
			Help: "Proven case cache lookups, by result (hit/miss)",
		},
		[]string{"result"},
	)
)
