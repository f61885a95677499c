package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedPlan(t *testing.T) (*Store, *ExecutionPlan) {
	t.Helper()

	p := &ExecutionPlan{
		PlanID:      "plan-test-001",
		ProjectName: "shop",
		BranchName:  "build/20260823-shop",
		CreatedAt:   time.Now().UTC(),
		Tasks: []TaskItem{
			task("generate-docs"),
			task("backend-orders", "generate-docs"),
			task("test-suite", "backend-orders"),
		},
		DependencyGraph: map[string][]string{
			"generate-docs":  {},
			"backend-orders": {"generate-docs"},
			"test-suite":     {"backend-orders"},
		},
		ExecutionOrder: []string{"generate-docs", "backend-orders", "test-suite"},
	}

	store := NewStore(t.TempDir())
	_, err := store.Save(p)
	require.NoError(t, err)
	return store, p
}

func TestSaveWritesAllArtifacts(t *testing.T) {
	store, p := storedPlan(t)

	dir := store.PlanDir(p.PlanID)
	for _, name := range []string{"plan.json", "PLAN.md", "graph.json", "progress.json"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	// No staging leftovers.
	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".staging-")
	}
}

func TestProgressSeededAtZero(t *testing.T) {
	store, p := storedPlan(t)

	progress, err := store.LoadProgress(p.PlanID)
	require.NoError(t, err)

	assert.Equal(t, 0, progress.CompletedTasks)
	assert.Equal(t, 3, progress.TotalTasks)
	assert.Equal(t, "generate-docs", progress.CurrentTask)
	assert.Zero(t, progress.Percentage)
}

func TestMarkCompletedAdvancesProgress(t *testing.T) {
	store, p := storedPlan(t)

	require.NoError(t, store.MarkCompleted(p, "generate-docs"))

	progress, err := store.LoadProgress(p.PlanID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedTasks)
	assert.Equal(t, 1, progress.CompletedByCategory["backend"])
	assert.Equal(t, "backend-orders", progress.CurrentTask)
	assert.InDelta(t, 33.3, progress.Percentage, 0.1)

	// The plan artifact itself is untouched.
	loaded, err := store.Load(p.PlanID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, loaded.Tasks[0].Status)
}

func TestMarkCompletedUnknownTask(t *testing.T) {
	store, p := storedPlan(t)
	assert.Error(t, store.MarkCompleted(p, "no-such-task"))
}

func TestMarkCompletedOutOfOrderKeepsFirstIncomplete(t *testing.T) {
	store, p := storedPlan(t)

	require.NoError(t, store.MarkCompleted(p, "test-suite"))

	progress, err := store.LoadProgress(p.PlanID)
	require.NoError(t, err)
	assert.Equal(t, []string{"test-suite"}, progress.CompletedIDs)
	assert.Equal(t, "generate-docs", progress.CurrentTask,
		"tasks skipped over must stay pending")
}

func TestMarkCompletedAllTasksClearsCurrent(t *testing.T) {
	store, p := storedPlan(t)

	for _, id := range p.ExecutionOrder {
		require.NoError(t, store.MarkCompleted(p, id))
	}

	progress, err := store.LoadProgress(p.PlanID)
	require.NoError(t, err)
	assert.Empty(t, progress.CurrentTask)
	assert.Equal(t, 3, progress.CompletedTasks)
	assert.InDelta(t, 100.0, progress.Percentage, 0.01)
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	store, p := storedPlan(t)

	require.NoError(t, store.MarkCompleted(p, "generate-docs"))
	require.NoError(t, store.MarkCompleted(p, "generate-docs"))

	progress, err := store.LoadProgress(p.PlanID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedTasks)
	assert.Equal(t, []string{"generate-docs"}, progress.CompletedIDs)
	assert.Equal(t, 1, progress.CompletedByCategory["backend"])
}

func TestListPlans(t *testing.T) {
	store, p := storedPlan(t)

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{p.PlanID}, ids)
}

func TestListEmptyDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLoadIDMismatch(t *testing.T) {
	store, p := storedPlan(t)

	// Copy the plan directory under a different id.
	src := store.PlanDir(p.PlanID)
	dst := store.PlanDir("other-id")
	require.NoError(t, os.MkdirAll(dst, 0750))
	data, err := os.ReadFile(filepath.Join(src, "plan.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dst, "plan.json"), data, 0600))

	_, err = store.Load("other-id")
	assert.Error(t, err)
}

func TestRenderMarkdown(t *testing.T) {
	_, p := storedPlan(t)

	md := renderMarkdown(p)
	assert.Contains(t, md, "# Execution Plan: shop")
	assert.Contains(t, md, "## Priority 2")
	assert.Contains(t, md, "depends on: generate-docs")
	assert.Contains(t, md, "1. generate-docs")
	assert.Contains(t, md, "3. test-suite")
}
