// internal/common/metrics/metrics.go
package metrics

import (
	"time"

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

	EligibilityEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_evaluations_total",
			Help: "Eligibility evaluations by resulting status",
		},
		[]string{"status"},
	)

	EligibilityLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_lookup_failures_total",
			Help: "Reference lookups that degraded an evaluation to the baseline, by chain link",
		},
		[]string{"link"},
	)

	EligibilityEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eligibility_evaluation_duration_seconds",
			Help:    "Duration of one eligibility evaluation including reference lookups",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	PipelineMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_moves_total",
			Help: "Candidate pipeline stage changes",
		},
		[]string{"from", "to"},
	)
)

// EligibilityRecorder feeds evaluator outcomes into the prometheus vectors above.
type EligibilityRecorder struct{}

func (EligibilityRecorder) ObserveEvaluation(status string, duration time.Duration) {
	EligibilityEvaluations.WithLabelValues(status).Inc()
	EligibilityEvaluationDuration.Observe(duration.Seconds())
}

func (EligibilityRecorder) ObserveLookupFailure(link string) {
	EligibilityLookupFailures.WithLabelValues(link).Inc()
}
