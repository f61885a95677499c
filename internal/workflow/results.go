package workflow

import (
	"time"

	"github.com/codeloom/codeloom/internal/plan"
)

// PlanningResult is produced by the PLANNING phase
type PlanningResult struct {
	PlanID    string `json:"plan_id"`
	TaskCount int    `json:"task_count"`
	PlanDir   string `json:"plan_dir"`
}

// EnvironmentSetupResult is produced by the ENVIRONMENT_SETUP phase
type EnvironmentSetupResult struct {
	ProjectPath    string   `json:"project_path"`
	FreshDirectory bool     `json:"fresh_directory"`
	Operations     []string `json:"operations"`
}

// CodeGenerationResult is produced by the CODE_GENERATION phase
type CodeGenerationResult struct {
	GeneratedFiles []string `json:"generated_files"`
	TasksSucceeded int      `json:"tasks_succeeded"`
	TasksFailed    int      `json:"tasks_failed"`
}

// TestingResult is produced by the TESTING phase
type TestingResult struct {
	GeneratedFiles []string `json:"generated_files"`
	TasksSucceeded int      `json:"tasks_succeeded"`
	TasksFailed    int      `json:"tasks_failed"`
}

// GitOperationsResult is produced by the GIT_OPERATIONS phase
type GitOperationsResult struct {
	CommitID   string   `json:"commit_id,omitempty"`
	Committed  bool     `json:"committed"`
	Pushed     bool     `json:"pushed"`
	Operations []string `json:"operations"`
}

// Context carries the mutable state of one run through its phases
type Context struct {
	CurrentPhase State
	Plan         *plan.ExecutionPlan
	ProjectPath  string
	StartedAt    time.Time

	Planning         *PlanningResult
	EnvironmentSetup *EnvironmentSetupResult
	CodeGeneration   *CodeGenerationResult
	Testing          *TestingResult
	GitOperations    *GitOperationsResult

	Warnings []string
	Fatal    error
}

// Report is the final outcome of a run, assembled from the phase results
type Report struct {
	ProjectName string        `json:"project_name"`
	PlanID      string        `json:"plan_id,omitempty"`
	BranchName  string        `json:"branch_name,omitempty"`
	FinalState  State         `json:"final_state"`
	Duration    time.Duration `json:"duration"`

	TasksTotal     int `json:"tasks_total"`
	TasksCompleted int `json:"tasks_completed"`
	TasksFailed    int `json:"tasks_failed"`

	GeneratedFiles []string `json:"generated_files,omitempty"`
	CommitID       string   `json:"commit_id,omitempty"`
	Pushed         bool     `json:"pushed"`

	Warnings   []string `json:"warnings,omitempty"`
	FatalError string   `json:"fatal_error,omitempty"`
}

// buildReport assembles the final report from a finished context
func buildReport(wf *Context, projectName string, started time.Time) *Report {
	report := &Report{
		ProjectName: projectName,
		FinalState:  wf.CurrentPhase,
		Duration:    time.Since(started),
		Warnings:    wf.Warnings,
	}

	if wf.Plan != nil {
		report.PlanID = wf.Plan.PlanID
		report.BranchName = wf.Plan.BranchName
		report.TasksTotal = len(wf.Plan.Tasks)
		for _, task := range wf.Plan.Tasks {
			switch task.Status {
			case plan.StatusCompleted:
				report.TasksCompleted++
			case plan.StatusFailed:
				report.TasksFailed++
			}
		}
	}
	if wf.CodeGeneration != nil {
		report.GeneratedFiles = append(report.GeneratedFiles, wf.CodeGeneration.GeneratedFiles...)
	}
	if wf.Testing != nil {
		report.GeneratedFiles = append(report.GeneratedFiles, wf.Testing.GeneratedFiles...)
	}
	if wf.GitOperations != nil {
		report.CommitID = wf.GitOperations.CommitID
		report.Pushed = wf.GitOperations.Pushed
	}
	if wf.Fatal != nil {
		report.FatalError = wf.Fatal.Error()
	}

	return report
}
