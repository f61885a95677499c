package workflow

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/codeloom/codeloom/internal/config"
	"github.com/codeloom/codeloom/internal/errors"
	"github.com/codeloom/codeloom/internal/generate"
	"github.com/codeloom/codeloom/internal/gitrepo"
	"github.com/codeloom/codeloom/internal/log"
	"github.com/codeloom/codeloom/internal/metrics"
	"github.com/codeloom/codeloom/internal/plan"
	"github.com/codeloom/codeloom/internal/summary"
)

// Callbacks are the observation hooks a caller may attach to a run. All
// fields are optional.
type Callbacks struct {
	// OnPhaseTransition fires after the engine moves between phases
	OnPhaseTransition func(from, to State)

	// OnTaskComplete fires after each task attempt, err is nil on success
	OnTaskComplete func(task plan.TaskItem, err error)

	// OnFatalError fires once when a phase failure aborts the run
	OnFatalError func(phase State, err error)
}

// Engine drives a build run through the fixed phase sequence
type Engine struct {
	cfg       config.Config
	planner   *plan.Planner
	repo      *gitrepo.Controller
	generator generate.Generator
	logger    *log.Logger
	metrics   *metrics.Metrics
	callbacks Callbacks
	paused    atomic.Bool
}

// NewEngine creates a workflow engine. The metrics argument may be nil.
func NewEngine(cfg config.Config, planner *plan.Planner, repo *gitrepo.Controller,
	generator generate.Generator, logger *log.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:       cfg,
		planner:   planner,
		repo:      repo,
		generator: generator,
		logger:    logger.With("component", "workflow"),
		metrics:   m,
	}
}

// SetCallbacks attaches observation hooks. Call before Run or ResumePlan.
func (e *Engine) SetCallbacks(cb Callbacks) {
	e.callbacks = cb
}

// RequestPause asks the engine to stop before the next phase. The current
// phase always runs to completion; a paused run is resumable via ResumePlan.
func (e *Engine) RequestPause() {
	e.paused.Store(true)
}

// Run executes a complete build: plan the work from the document summary,
// prepare the working directory, generate code and tests, and publish the
// result. The report is returned also when the run fails or pauses.
func (e *Engine) Run(ctx context.Context, doc *summary.DocumentSummary, projectName string) (*Report, error) {
	started := time.Now()
	wf := &Context{CurrentPhase: StateInitialized, StartedAt: started}

	remote := e.cfg.RemoteURL
	if doc != nil && doc.RemoteHint != "" {
		remote = doc.RemoteHint
	}

	err := e.runPhase(ctx, wf, StatePlanning, func(ctx context.Context, wf *Context) error {
		return e.phasePlanning(ctx, wf, doc, projectName)
	})
	if err != nil {
		return buildReport(wf, projectName, started), err
	}

	if err := e.executeBuild(ctx, wf, remote); err != nil {
		return buildReport(wf, wf.Plan.ProjectName, started), err
	}
	return buildReport(wf, wf.Plan.ProjectName, started), nil
}

// ResumePlan re-enters a previously planned run. The plan must exist; a
// missing plan fails fast before any phase executes. Tasks already recorded
// as completed are not attempted again.
func (e *Engine) ResumePlan(ctx context.Context, planID string) (*Report, error) {
	started := time.Now()
	wf := &Context{CurrentPhase: StatePlanning, StartedAt: started}

	loaded, err := e.planner.LoadExecutionPlan(planID)
	if err != nil {
		wf.Fatal = err
		wf.CurrentPhase = StateFailed
		if e.callbacks.OnFatalError != nil {
			e.callbacks.OnFatalError(StatePlanning, err)
		}
		return buildReport(wf, "", started), err
	}
	wf.Plan = loaded
	e.restoreProgress(wf)

	e.logger.Info("resuming build",
		"plan", planID,
		"project", loaded.ProjectName,
		"tasks", len(loaded.Tasks))

	if err := e.executeBuild(ctx, wf, e.cfg.RemoteURL); err != nil {
		return buildReport(wf, loaded.ProjectName, started), err
	}
	return buildReport(wf, loaded.ProjectName, started), nil
}

// restoreProgress marks the tasks the stored progress file records as
// completed. Tasks that failed mid-order stay pending and are attempted
// again. A missing progress file means a fresh run.
func (e *Engine) restoreProgress(wf *Context) {
	progress, err := e.planner.Store().LoadProgress(wf.Plan.PlanID)
	if err != nil {
		return
	}
	for _, id := range progress.CompletedIDs {
		if task := wf.Plan.TaskByID(id); task != nil {
			task.Status = plan.StatusCompleted
		}
	}
}

// executeBuild runs the phases after PLANNING. A pause request takes effect
// between phases only.
func (e *Engine) executeBuild(ctx context.Context, wf *Context, remoteURL string) error {
	phases := []struct {
		state State
		fn    func(context.Context, *Context) error
	}{
		{StateEnvironmentSetup, func(ctx context.Context, wf *Context) error {
			return e.phaseEnvironmentSetup(ctx, wf, remoteURL)
		}},
		{StateCodeGeneration, e.phaseCodeGeneration},
		{StateTesting, e.phaseTesting},
		{StateGitOperations, func(ctx context.Context, wf *Context) error {
			return e.phaseGitOperations(ctx, wf, remoteURL)
		}},
	}

	for _, phase := range phases {
		if e.paused.Load() {
			e.transition(wf, StatePaused)
			e.logger.Info("build paused", "plan", wf.Plan.PlanID, "before", phase.state)
			return nil
		}
		if err := e.runPhase(ctx, wf, phase.state, phase.fn); err != nil {
			return err
		}
	}

	e.transition(wf, StateCompleted)
	return nil
}

// transition moves the context to the target phase and fires the callback
func (e *Engine) transition(wf *Context, to State) {
	from := wf.CurrentPhase
	wf.CurrentPhase = to
	e.logger.Info("phase transition", "from", from, "to", to)
	if e.callbacks.OnPhaseTransition != nil {
		e.callbacks.OnPhaseTransition(from, to)
	}
}

// runPhase executes one phase with timing, metrics, and failure handling.
// A phase error moves the run to FAILED and fires the fatal callback.
func (e *Engine) runPhase(ctx context.Context, wf *Context, state State, fn func(context.Context, *Context) error) error {
	e.transition(wf, state)
	started := time.Now()

	err := fn(ctx, wf)

	if e.metrics != nil {
		status := "success"
		if err != nil {
			status = "failure"
		}
		e.metrics.PhaseExecutions.WithLabelValues(string(state), status).Inc()
		e.metrics.PhaseDuration.WithLabelValues(string(state)).Observe(time.Since(started).Seconds())
	}

	if err != nil {
		failure := errors.NewPhaseFailureError(string(state), err)
		wf.Fatal = failure
		e.logger.LogError(failure)
		if e.callbacks.OnFatalError != nil {
			e.callbacks.OnFatalError(state, failure)
		}
		e.transition(wf, StateFailed)
		return failure
	}
	return nil
}

func (e *Engine) phasePlanning(_ context.Context, wf *Context, doc *summary.DocumentSummary, projectName string) error {
	created, err := e.planner.CreateExecutionPlan(doc, projectName)
	if err != nil {
		return err
	}
	planDir, err := e.planner.SaveExecutionPlan(created)
	if err != nil {
		return err
	}

	wf.Plan = created
	wf.Planning = &PlanningResult{
		PlanID:    created.PlanID,
		TaskCount: len(created.Tasks),
		PlanDir:   planDir,
	}
	return nil
}

func (e *Engine) phaseEnvironmentSetup(ctx context.Context, wf *Context, remoteURL string) error {
	setup, err := e.repo.Setup(ctx, wf.Plan.ProjectName, wf.Plan.BranchName, remoteURL)
	if err != nil {
		return err
	}
	wf.ProjectPath = setup.ProjectPath

	result := &EnvironmentSetupResult{
		ProjectPath: setup.ProjectPath,
		Operations:  setup.Operations,
	}
	if structure, err := e.repo.AnalyzeExistingStructure(setup.ProjectPath); err == nil {
		result.FreshDirectory = structure.IsFresh()
		if !result.FreshDirectory {
			e.logger.Info("augmenting existing project",
				"path", setup.ProjectPath,
				"existing_files", len(structure.ExistingFiles))
		}
	}
	wf.EnvironmentSetup = result
	return nil
}

func (e *Engine) phaseCodeGeneration(ctx context.Context, wf *Context) error {
	files, succeeded, failed := e.runTasks(ctx, wf,
		plan.CategorySetup, plan.CategoryDocs, plan.CategoryBackend,
		plan.CategoryFrontend, plan.CategoryDatabase)

	wf.CodeGeneration = &CodeGenerationResult{
		GeneratedFiles: files,
		TasksSucceeded: succeeded,
		TasksFailed:    failed,
	}
	if failed > 0 && succeeded == 0 {
		return fmt.Errorf("all %d generation tasks failed", failed)
	}
	return nil
}

func (e *Engine) phaseTesting(ctx context.Context, wf *Context) error {
	files, succeeded, failed := e.runTasks(ctx, wf, plan.CategoryTest)

	wf.Testing = &TestingResult{
		GeneratedFiles: files,
		TasksSucceeded: succeeded,
		TasksFailed:    failed,
	}
	if failed > 0 && succeeded == 0 {
		return fmt.Errorf("all %d test tasks failed", failed)
	}
	return nil
}

// runTasks attempts every not-yet-completed task of the given categories in
// execution order. A failed task is recorded as a warning and its dependents
// are still attempted; only a phase where every attempted task failed is
// reported to the caller as a failure.
func (e *Engine) runTasks(ctx context.Context, wf *Context, categories ...plan.TaskCategory) (files []string, succeeded, failed int) {
	want := make(map[plan.TaskCategory]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}

	for _, id := range wf.Plan.ExecutionOrder {
		task := wf.Plan.TaskByID(id)
		if task == nil || !want[task.Category] || task.Status == plan.StatusCompleted {
			continue
		}

		for _, dep := range task.Dependencies {
			if upstream := wf.Plan.TaskByID(dep); upstream != nil && upstream.Status == plan.StatusFailed {
				wf.Warnings = append(wf.Warnings,
					fmt.Sprintf("task %s attempted although dependency %s failed", task.ID, dep))
			}
		}

		task.Status = plan.StatusInProgress
		started := time.Now()
		result, err := e.generator.Generate(ctx, *task, wf.ProjectPath)

		if e.metrics != nil {
			status := "success"
			if err != nil {
				status = "failure"
			}
			e.metrics.TaskExecutions.WithLabelValues(string(task.Category), status).Inc()
			e.metrics.TaskDuration.WithLabelValues(string(task.Category)).Observe(time.Since(started).Seconds())
		}

		if err != nil {
			task.Status = plan.StatusFailed
			failed++
			wf.Warnings = append(wf.Warnings, fmt.Sprintf("task %s failed: %v", task.ID, err))
			e.logger.Warn("task failed", "task", task.ID, "error", err.Error())
		} else {
			task.Status = plan.StatusCompleted
			succeeded++
			files = append(files, result.Files...)
			if err := e.planner.Store().MarkCompleted(wf.Plan, task.ID); err != nil {
				e.logger.Warn("progress update failed", "task", task.ID, "error", err.Error())
			}
		}

		if e.callbacks.OnTaskComplete != nil {
			e.callbacks.OnTaskComplete(*task, err)
		}
	}

	return files, succeeded, failed
}

func (e *Engine) phaseGitOperations(ctx context.Context, wf *Context, remoteURL string) error {
	// The repository may have vanished since setup; re-run the full
	// initialization rather than assuming partial state.
	if !e.repo.IsRepository(ctx, wf.ProjectPath) {
		setup, err := e.repo.Setup(ctx, wf.Plan.ProjectName, wf.Plan.BranchName, remoteURL)
		if err != nil {
			return err
		}
		wf.ProjectPath = setup.ProjectPath
	}

	message := gitrepo.BuildCommitMessage(wf.Plan.ProjectName, time.Now())
	commit, err := e.repo.CommitAndPush(ctx, message, wf.ProjectPath, e.cfg.Push)
	if err != nil {
		return err
	}

	if commit.PushAttempted && !commit.Pushed {
		wf.Warnings = append(wf.Warnings,
			fmt.Sprintf("push failed for plan %s, commit %s is local only", wf.Plan.PlanID, commit.CommitID))
	}

	for i := range wf.Plan.Tasks {
		task := &wf.Plan.Tasks[i]
		if task.Category != plan.CategoryGit || task.Status == plan.StatusCompleted {
			continue
		}
		task.Status = plan.StatusCompleted
		if err := e.planner.Store().MarkCompleted(wf.Plan, task.ID); err != nil {
			e.logger.Warn("progress update failed", "task", task.ID, "error", err.Error())
		}
		if e.callbacks.OnTaskComplete != nil {
			e.callbacks.OnTaskComplete(*task, nil)
		}
	}

	wf.GitOperations = &GitOperationsResult{
		CommitID:   commit.CommitID,
		Committed:  commit.Committed,
		Pushed:     commit.Pushed,
		Operations: commit.Operations,
	}
	return nil
}
