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
)

// Matching
var (
	MatchesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_scored_total",
			Help: "Scored (student, scholarship) pairs by priority tier",
		},
		[]string{"tier"},
	)

	ScholarshipsExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarships_excluded_total",
			Help: "Scholarships removed by the eligibility filter, by failing dimension",
		},
		[]string{"dimension"},
	)
)

// Import
var (
	DuplicatesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarship_duplicates_found_total",
			Help: "Duplicate scholarship candidates by kind (exact, fuzzy, batch)",
		},
		[]string{"kind"},
	)

	ImportChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarship_import_chunks_total",
			Help: "Import chunks by outcome (committed, failed)",
		},
		[]string{"outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_notifications_sent_total",
			Help: "Priority match notifications by channel",
		},
		[]string{"channel"},
	)
)
