package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() *ExecutionPlan {
	return &ExecutionPlan{
		PlanID:      "p1",
		ProjectName: "shop",
		BranchName:  "build/20260823-shop",
		Tasks: []TaskItem{
			task("a"),
			task("b", "a"),
		},
		DependencyGraph: map[string][]string{"a": {}, "b": {"a"}},
		ExecutionOrder:  []string{"a", "b"},
	}
}

func TestValidatePlanOK(t *testing.T) {
	require.NoError(t, validPlan().Validate())
}

func TestValidatePlanErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ExecutionPlan)
	}{
		{"no tasks", func(p *ExecutionPlan) { p.Tasks = nil }},
		{"duplicate id", func(p *ExecutionPlan) { p.Tasks = append(p.Tasks, task("a")) }},
		{"unknown dependency", func(p *ExecutionPlan) { p.Tasks[1].Dependencies = []string{"ghost"} }},
		{"self dependency", func(p *ExecutionPlan) { p.Tasks[0].Dependencies = []string{"a"} }},
		{"order too short", func(p *ExecutionPlan) { p.ExecutionOrder = []string{"a"} }},
		{"order duplicate", func(p *ExecutionPlan) { p.ExecutionOrder = []string{"a", "a"} }},
		{"order violates edge", func(p *ExecutionPlan) { p.ExecutionOrder = []string{"b", "a"} }},
		{"bad category", func(p *ExecutionPlan) { p.Tasks[0].Category = "mystery" }},
		{"zero priority", func(p *ExecutionPlan) { p.Tasks[0].Priority = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}
