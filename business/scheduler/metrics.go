package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Count of scheduled job executions by job and outcome.",
		},
		[]string{"job", "outcome"},
	)

	BatchUsersProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_batch_users_processed_total",
			Help: "Users updated by the event-driven profile batch.",
		},
	)

	BatchUsersSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_batch_users_skipped_total",
			Help: "Users skipped by the event-driven profile batch.",
		},
	)
)

func init() {
	prometheus.MustRegister(JobRunsTotal, BatchUsersProcessed, BatchUsersSkipped)
}
