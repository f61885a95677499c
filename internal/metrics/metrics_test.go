package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.PlanGenerations.WithLabelValues("success").Inc()
	m.TaskExecutions.WithLabelValues("backend", "completed").Add(3)
	m.PushFailures.Inc()

	if got := testutil.ToFloat64(m.PlanGenerations.WithLabelValues("success")); got != 1 {
		t.Errorf("plan generations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TaskExecutions.WithLabelValues("backend", "completed")); got != 3 {
		t.Errorf("task executions = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.PushFailures); got != 1 {
		t.Errorf("push failures = %v, want 1", got)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Error("registering the same metrics twice should panic")
		}
	}()
	NewMetrics(reg)
}
