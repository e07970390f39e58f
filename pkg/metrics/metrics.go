// Package metrics declares prometheus metrics of pms.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_submissions_total",
			Help: "Total number of workload submissions",
		},
		[]string{"retry", "status"}, // retry: "true" or "false", status: succeeded or failure
	)

	SubmissionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_submission_failures_total",
			Help: "Total number of failed submissions by stage and error kind",
		},
		[]string{"stage", "kind"},
	)

	SubmissionDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pms_submission_duration_seconds",
			Help:    "Duration of workload submissions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
		},
	)

	ReconciledWorkloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_reconciled_workloads_total",
			Help: "Total number of mirror changes made by reconciliation",
		},
		[]string{"change"}, // deleted, inserted, refreshed, skipped, failed
	)

	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_reconciliations_total",
			Help: "Total number of reconciliation passes",
		},
		[]string{"success"},
	)

	MirroredWorkloads = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pms_mirrored_workloads",
			Help: "Number of workloads in the mirror after the last reconciliation",
		},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_predictions_total",
			Help: "Total number of resource predictions",
		},
		[]string{"source", "success"}, // source: service, cache, static
	)
)

// Bool formats b as a label value.
func Bool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
