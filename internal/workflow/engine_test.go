package workflow

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeloom/codeloom/internal/config"
	"github.com/codeloom/codeloom/internal/errors"
	"github.com/codeloom/codeloom/internal/generate"
	"github.com/codeloom/codeloom/internal/gitrepo"
	"github.com/codeloom/codeloom/internal/log"
	"github.com/codeloom/codeloom/internal/plan"
	"github.com/codeloom/codeloom/internal/procexec"
	"github.com/codeloom/codeloom/internal/summary"
)

// fakeGenerator is a scripted Generator that records which tasks it saw
type fakeGenerator struct {
	mu      sync.Mutex
	failIDs map[string]bool
	failAll bool
	calls   []string
}

func newFakeGenerator(failIDs ...string) *fakeGenerator {
	fail := make(map[string]bool, len(failIDs))
	for _, id := range failIDs {
		fail[id] = true
	}
	return &fakeGenerator{failIDs: fail}
}

func (g *fakeGenerator) Generate(_ context.Context, task plan.TaskItem, _ string) (*generate.GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, task.ID)
	if g.failAll || g.failIDs[task.ID] {
		return nil, errors.NewTaskExecutionError(task.ID, fmt.Errorf("generator refused"))
	}
	return &generate.GenerationResult{
		Files: []string{string(task.Category) + "/" + task.ID + ".go"},
	}, nil
}

func (g *fakeGenerator) taskIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}

func quietLogger() *log.Logger {
	return log.New(log.Config{
		Level:  log.LevelError,
		Format: log.FormatText,
		Output: log.NewOutput(io.Discard),
	})
}

func sampleSummary() *summary.DocumentSummary {
	return &summary.DocumentSummary{
		ProjectInfo: summary.ProjectInfo{Name: "Order Management System"},
		BusinessModules: []summary.BusinessModule{
			{Name: "Orders"},
			{Name: "Inventory"},
		},
		DataTables: []summary.DataTable{
			{Name: "orders"},
		},
		UIComponents: []summary.UIComponent{
			{Name: "Order Dashboard"},
		},
	}
}

// dirtyGitFake returns a FakeRunner whose working tree always has changes
// so the publish phase produces a commit.
func dirtyGitFake() *procexec.FakeRunner {
	return procexec.NewFakeRunner().
		Stub("git status --porcelain", procexec.Result{Stdout: " M backend/main.go"}).
		Stub("git rev-parse HEAD", procexec.Result{Stdout: "deadbeef"}).
		Stub("git rev-parse --verify", procexec.Result{ExitCode: 1})
}

func testEngine(t *testing.T, gen generate.Generator, git *procexec.FakeRunner) (*Engine, config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.WorkspaceRoot = t.TempDir()
	cfg.PlansDir = t.TempDir()
	cfg.Push = false

	logger := quietLogger()
	planner := plan.NewPlanner(cfg, logger, nil)
	repo := gitrepo.NewController(cfg, git, logger, nil)
	return NewEngine(cfg, planner, repo, gen, logger, nil), cfg
}

func TestRunHappyPath(t *testing.T) {
	gen := newFakeGenerator()
	engine, _ := testEngine(t, gen, dirtyGitFake())

	var transitions []State
	var completed []string
	engine.SetCallbacks(Callbacks{
		OnPhaseTransition: func(_, to State) { transitions = append(transitions, to) },
		OnTaskComplete: func(task plan.TaskItem, err error) {
			require.NoError(t, err)
			completed = append(completed, task.ID)
		},
	})

	report, err := engine.Run(context.Background(), sampleSummary(), "")
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, report.FinalState)
	assert.Equal(t, []State{
		StatePlanning, StateEnvironmentSetup, StateCodeGeneration,
		StateTesting, StateGitOperations, StateCompleted,
	}, transitions)

	assert.Equal(t, "order-management-system", report.ProjectName)
	assert.NotEmpty(t, report.PlanID)
	assert.Equal(t, report.TasksTotal, report.TasksCompleted)
	assert.Zero(t, report.TasksFailed)
	assert.Len(t, completed, report.TasksTotal)
	assert.Equal(t, "deadbeef", report.CommitID)
	assert.NotEmpty(t, report.GeneratedFiles)
	assert.Empty(t, report.Warnings)
}

func TestRunToleratesSingleTaskFailure(t *testing.T) {
	gen := newFakeGenerator("backend-implement-module-orders")
	engine, _ := testEngine(t, gen, dirtyGitFake())

	var failedTasks []string
	engine.SetCallbacks(Callbacks{
		OnTaskComplete: func(task plan.TaskItem, err error) {
			if err != nil {
				failedTasks = append(failedTasks, task.ID)
			}
		},
	})

	report, err := engine.Run(context.Background(), sampleSummary(), "")
	require.NoError(t, err, "one failed task must not fail the run")

	assert.Equal(t, StateCompleted, report.FinalState)
	assert.Equal(t, []string{"backend-implement-module-orders"}, failedTasks)
	assert.Equal(t, 1, report.TasksFailed)

	// The dependent test task still ran, with a recorded warning.
	assert.Contains(t, gen.taskIDs(), "test-suite")
	foundUpstream := false
	for _, warning := range report.Warnings {
		if warning == "task test-suite attempted although dependency backend-implement-module-orders failed" {
			foundUpstream = true
		}
	}
	assert.True(t, foundUpstream, "warnings: %v", report.Warnings)
}

func TestRunFailsWhenEveryGenerationTaskFails(t *testing.T) {
	gen := newFakeGenerator()
	gen.failAll = true
	engine, _ := testEngine(t, gen, dirtyGitFake())

	var fatalPhase State
	engine.SetCallbacks(Callbacks{
		OnFatalError: func(phase State, err error) { fatalPhase = phase },
	})

	report, err := engine.Run(context.Background(), sampleSummary(), "")
	require.Error(t, err)

	var loomErr *errors.LoomError
	require.ErrorAs(t, err, &loomErr)
	assert.Equal(t, errors.ErrCodePhaseFailed, loomErr.Code)
	assert.Equal(t, StateCodeGeneration, fatalPhase)
	assert.Equal(t, StateFailed, report.FinalState)
	assert.NotEmpty(t, report.FatalError)
}

func TestRunFailsFastOnMissingSummary(t *testing.T) {
	engine, _ := testEngine(t, newFakeGenerator(), procexec.NewFakeRunner())

	report, err := engine.Run(context.Background(), nil, "")
	require.Error(t, err)
	assert.Equal(t, StateFailed, report.FinalState)
	assert.Zero(t, report.TasksTotal)
}

func TestResumeUnknownPlanFailsFast(t *testing.T) {
	engine, _ := testEngine(t, newFakeGenerator(), procexec.NewFakeRunner())

	var transitions []State
	engine.SetCallbacks(Callbacks{
		OnPhaseTransition: func(_, to State) { transitions = append(transitions, to) },
	})

	report, err := engine.ResumePlan(context.Background(), "no-such-plan")
	require.Error(t, err)

	var loomErr *errors.LoomError
	require.ErrorAs(t, err, &loomErr)
	assert.Equal(t, errors.ErrCodePlanNotFound, loomErr.Code)
	assert.Equal(t, StateFailed, report.FinalState)
	assert.Empty(t, transitions, "no phase may run for a missing plan")
}

func TestResumeSkipsCompletedTasks(t *testing.T) {
	gen := newFakeGenerator()
	engine, cfg := testEngine(t, gen, dirtyGitFake())

	logger := quietLogger()
	planner := plan.NewPlanner(cfg, logger, nil)
	created, err := planner.CreateExecutionPlan(sampleSummary(), "")
	require.NoError(t, err)
	_, err = planner.SaveExecutionPlan(created)
	require.NoError(t, err)

	// The first two tasks already ran in a previous session.
	require.NoError(t, planner.Store().MarkCompleted(created, created.ExecutionOrder[0]))
	require.NoError(t, planner.Store().MarkCompleted(created, created.ExecutionOrder[1]))

	report, err := engine.ResumePlan(context.Background(), created.PlanID)
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, report.FinalState)
	ran := gen.taskIDs()
	assert.NotContains(t, ran, created.ExecutionOrder[0])
	assert.NotContains(t, ran, created.ExecutionOrder[1])
	assert.Equal(t, report.TasksTotal, report.TasksCompleted)
}

func TestResumeRetriesFailedTaskOnly(t *testing.T) {
	gen := newFakeGenerator("backend-implement-module-orders")
	engine, cfg := testEngine(t, gen, dirtyGitFake())

	report, err := engine.Run(context.Background(), sampleSummary(), "")
	require.NoError(t, err)
	require.Equal(t, 1, report.TasksFailed)

	// A fresh session against the same plan store, generator now healthy.
	logger := quietLogger()
	planner := plan.NewPlanner(cfg, logger, nil)
	repo := gitrepo.NewController(cfg, dirtyGitFake(), logger, nil)
	retryGen := newFakeGenerator()
	resumed := NewEngine(cfg, planner, repo, retryGen, logger, nil)

	resumedReport, err := resumed.ResumePlan(context.Background(), report.PlanID)
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, resumedReport.FinalState)
	assert.Equal(t, []string{"backend-implement-module-orders"}, retryGen.taskIDs(),
		"only the previously failed task is attempted again")
	assert.Equal(t, resumedReport.TasksTotal, resumedReport.TasksCompleted)
	assert.Zero(t, resumedReport.TasksFailed)
}

func TestPauseBetweenPhases(t *testing.T) {
	gen := newFakeGenerator()
	engine, _ := testEngine(t, gen, dirtyGitFake())

	engine.SetCallbacks(Callbacks{
		OnPhaseTransition: func(_, to State) {
			if to == StateCodeGeneration {
				engine.RequestPause()
			}
		},
	})

	report, err := engine.Run(context.Background(), sampleSummary(), "")
	require.NoError(t, err)

	assert.Equal(t, StatePaused, report.FinalState)
	assert.NotEmpty(t, gen.taskIDs(), "the running phase finishes before pausing")
	assert.Zero(t, report.CommitID, "publishing must not run after a pause")
}

func TestPushFailureIsReportedAsWarning(t *testing.T) {
	git := dirtyGitFake().
		Stub("git remote get-url origin", procexec.Result{Stdout: "git@example.com:acme/shop.git"}).
		Stub("git push", procexec.Result{ExitCode: 1, Stderr: "rejected"})

	gen := newFakeGenerator()
	engine, cfg := testEngine(t, gen, git)
	cfg.Push = true
	cfg.RemoteURL = "git@example.com:acme/shop.git"
	logger := quietLogger()
	planner := plan.NewPlanner(cfg, logger, nil)
	repo := gitrepo.NewController(cfg, git, logger, nil)
	engine = NewEngine(cfg, planner, repo, gen, logger, nil)

	report, err := engine.Run(context.Background(), sampleSummary(), "")
	require.NoError(t, err, "push failure must not fail the run")

	assert.Equal(t, StateCompleted, report.FinalState)
	assert.False(t, report.Pushed)
	assert.Equal(t, "deadbeef", report.CommitID)

	foundPushWarning := false
	for _, warning := range report.Warnings {
		if len(warning) > 0 && warning[:4] == "push" {
			foundPushWarning = true
		}
	}
	assert.True(t, foundPushWarning, "warnings: %v", report.Warnings)
}

func TestPushSkippedWithoutRemote(t *testing.T) {
	// Pushing is enabled but the repository has no remote, so no push is
	// attempted and none may be reported as failed.
	git := dirtyGitFake()
	gen := newFakeGenerator()
	_, cfg := testEngine(t, gen, git)
	cfg.Push = true
	logger := quietLogger()
	planner := plan.NewPlanner(cfg, logger, nil)
	repo := gitrepo.NewController(cfg, git, logger, nil)
	engine := NewEngine(cfg, planner, repo, gen, logger, nil)

	report, err := engine.Run(context.Background(), sampleSummary(), "")
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, report.FinalState)
	assert.Equal(t, "deadbeef", report.CommitID)
	assert.False(t, report.Pushed)
	assert.Empty(t, report.Warnings)
	assert.Zero(t, git.CallCount("git push"))
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateInitialized.CanTransition(StatePlanning))
	assert.True(t, StatePlanning.CanTransition(StateEnvironmentSetup))
	assert.True(t, StateCodeGeneration.CanTransition(StateFailed))
	assert.True(t, StateTesting.CanTransition(StatePaused))
	assert.True(t, StatePaused.CanTransition(StateCodeGeneration))
	assert.False(t, StateInitialized.CanTransition(StateCompleted))
	assert.False(t, StateCompleted.CanTransition(StatePlanning))
	assert.False(t, StateFailed.CanTransition(StatePlanning))
	assert.True(t, StateCompleted.IsTerminal())
	assert.False(t, StatePaused.IsTerminal())
}
