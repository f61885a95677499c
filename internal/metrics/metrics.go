package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the build core
type Metrics struct {
	// Plan generation metrics
	PlanGenerations *prometheus.CounterVec
	PlanTaskCount   prometheus.Histogram

	// Workflow phase metrics
	PhaseExecutions *prometheus.CounterVec
	PhaseDuration   *prometheus.HistogramVec

	// Task execution metrics
	TaskExecutions *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec

	// Repository operation metrics
	RepoOperations *prometheus.CounterVec
	CommitsCreated prometheus.Counter
	PushFailures   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PlanGenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codeloom",
				Subsystem: "plan",
				Name:      "generations_total",
				Help:      "Total number of execution plan generations by status",
			},
			[]string{"status"},
		),
		PlanTaskCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "codeloom",
				Subsystem: "plan",
				Name:      "task_count",
				Help:      "Number of tasks per generated execution plan",
				Buckets:   []float64{1, 5, 10, 20, 50, 100},
			},
		),
		PhaseExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codeloom",
				Subsystem: "workflow",
				Name:      "phase_executions_total",
				Help:      "Total number of workflow phase executions by phase and status",
			},
			[]string{"phase", "status"},
		),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "codeloom",
				Subsystem: "workflow",
				Name:      "phase_duration_seconds",
				Help:      "Duration of workflow phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"phase"},
		),
		TaskExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codeloom",
				Subsystem: "task",
				Name:      "executions_total",
				Help:      "Total number of task executions by category and status",
			},
			[]string{"category", "status"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "codeloom",
				Subsystem: "task",
				Name:      "duration_seconds",
				Help:      "Duration of task executions in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"category"},
		),
		RepoOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codeloom",
				Subsystem: "repo",
				Name:      "operations_total",
				Help:      "Total number of repository operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		CommitsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "codeloom",
				Subsystem: "repo",
				Name:      "commits_created_total",
				Help:      "Total number of commits created by the build core",
			},
		),
		PushFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "codeloom",
				Subsystem: "repo",
				Name:      "push_failures_total",
				Help:      "Total number of push attempts recorded as warnings",
			},
		),
	}
}
