package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/codeloom/codeloom/internal/errors"
)

// Artifact file names inside a plan directory
const (
	planFileName     = "plan.json"
	markdownFileName = "PLAN.md"
	graphFileName    = "graph.json"
	progressFileName = "progress.json"
)

// Progress tracks task completion separately from the immutable plan
type Progress struct {
	PlanID string `json:"plan_id"`

	// CurrentTask is the next task to run in execution order
	CurrentTask string `json:"current_task"`

	// CompletedByCategory counts completed tasks per category
	CompletedByCategory map[string]int `json:"completed_by_category"`

	// CompletedIDs records exactly which tasks finished. The order a run
	// completes tasks in is not necessarily the execution order, so a bare
	// count cannot reconstruct the set.
	CompletedIDs []string `json:"completed_ids"`

	CompletedTasks int     `json:"completed_tasks"`
	TotalTasks     int     `json:"total_tasks"`
	Percentage     float64 `json:"percentage"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsCompleted reports whether the given task is recorded as completed
func (pr *Progress) IsCompleted(taskID string) bool {
	for _, id := range pr.CompletedIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

// Store persists execution plans under a base directory, one subdirectory
// per plan id holding the machine plan, the human-readable rendering, the
// dependency graph, and the progress tracker.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// PlanDir returns the directory holding a plan's artifacts
func (s *Store) PlanDir(planID string) string {
	return filepath.Join(s.baseDir, planID)
}

// Save writes the four plan artifacts as a set: the files are staged in a
// temporary directory and renamed into place so a partially-written plan
// never appears at the final location.
func (s *Store) Save(p *ExecutionPlan) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.baseDir, 0750); err != nil {
		return "", errors.Wrap(errors.ErrCodeDirectoryFailed, "create plans directory", err)
	}

	stageDir, err := os.MkdirTemp(s.baseDir, ".staging-")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDirectoryFailed, "create staging directory", err)
	}
	defer os.RemoveAll(stageDir)

	progress := &Progress{
		PlanID:              p.PlanID,
		CurrentTask:         p.ExecutionOrder[0],
		CompletedByCategory: make(map[string]int),
		CompletedIDs:        []string{},
		TotalTasks:          len(p.Tasks),
		UpdatedAt:           time.Now().UTC(),
	}

	files := map[string]any{
		planFileName:     p,
		graphFileName:    p.DependencyGraph,
		progressFileName: progress,
	}
	for name, payload := range files {
		if err := writeJSON(filepath.Join(stageDir, name), payload); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(filepath.Join(stageDir, markdownFileName), []byte(renderMarkdown(p)), 0600); err != nil {
		return "", errors.Wrap(errors.ErrCodeFileWriteFailed, "write plan markdown", err)
	}

	finalDir := s.PlanDir(p.PlanID)
	if err := os.RemoveAll(finalDir); err != nil {
		return "", errors.Wrap(errors.ErrCodeDirectoryFailed, "clear plan directory", err)
	}
	if err := os.Rename(stageDir, finalDir); err != nil {
		return "", errors.Wrap(errors.ErrCodeFileWriteFailed, "publish plan artifacts", err)
	}

	return finalDir, nil
}

// Load reconstructs a plan from its machine-readable artifact. Returns a
// PlanNotFound error when the id does not resolve to a stored plan.
func (s *Store) Load(planID string) (*ExecutionPlan, error) {
	path := filepath.Join(s.PlanDir(planID), planFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPlanNotFoundError(planID)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read plan file", err)
	}

	var p ExecutionPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "JSON", err)
	}

	// Stored-id mismatch means the directory holds someone else's plan.
	if p.PlanID != planID {
		return nil, errors.NewPlanNotFoundError(planID)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// List returns the ids of all stored plans
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read plans directory", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadProgress reads the progress tracker for a plan
func (s *Store) LoadProgress(planID string) (*Progress, error) {
	path := filepath.Join(s.PlanDir(planID), progressFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPlanNotFoundError(planID)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read progress file", err)
	}

	var progress Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "JSON", err)
	}

	return &progress, nil
}

// MarkCompleted records a completed task in the progress tracker and moves
// the current task pointer to the first incomplete entry of the execution
// order. Marking a task twice is a no-op. The plan artifact itself is never
// rewritten.
func (s *Store) MarkCompleted(p *ExecutionPlan, taskID string) error {
	progress, err := s.LoadProgress(p.PlanID)
	if err != nil {
		return err
	}

	task := p.TaskByID(taskID)
	if task == nil {
		return errors.New(errors.ErrCodePlanTaskMissing, fmt.Sprintf("task %s not in plan %s", taskID, p.PlanID))
	}
	if progress.IsCompleted(taskID) {
		return nil
	}

	progress.CompletedIDs = append(progress.CompletedIDs, taskID)
	progress.CompletedByCategory[string(task.Category)]++
	progress.CompletedTasks = len(progress.CompletedIDs)
	progress.Percentage = float64(progress.CompletedTasks) / float64(progress.TotalTasks) * 100

	progress.CurrentTask = ""
	for _, id := range p.ExecutionOrder {
		if !progress.IsCompleted(id) {
			progress.CurrentTask = id
			break
		}
	}

	progress.UpdatedAt = time.Now().UTC()

	return writeJSON(filepath.Join(s.PlanDir(p.PlanID), progressFileName), progress)
}

func writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal plan artifact", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write plan artifact", err)
	}
	return nil
}

// renderMarkdown produces the human-readable plan: tasks grouped by
// priority with their dependencies, followed by the execution order.
func renderMarkdown(p *ExecutionPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Execution Plan: %s\n\n", p.ProjectName)
	fmt.Fprintf(&b, "- Plan ID: `%s`\n", p.PlanID)
	fmt.Fprintf(&b, "- Branch: `%s`\n", p.BranchName)
	fmt.Fprintf(&b, "- Created: %s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Tasks: %d\n", len(p.Tasks))

	byPriority := make(map[int][]TaskItem)
	var priorities []int
	for _, task := range p.Tasks {
		if _, ok := byPriority[task.Priority]; !ok {
			priorities = append(priorities, task.Priority)
		}
		byPriority[task.Priority] = append(byPriority[task.Priority], task)
	}
	sort.Ints(priorities)

	for _, priority := range priorities {
		fmt.Fprintf(&b, "\n## Priority %d\n\n", priority)
		for _, task := range byPriority[priority] {
			fmt.Fprintf(&b, "- **%s** (`%s`, %s)", task.Name, task.ID, task.Category)
			if len(task.Dependencies) > 0 {
				fmt.Fprintf(&b, " depends on: %s", strings.Join(task.Dependencies, ", "))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Execution Order\n\n")
	for i, id := range p.ExecutionOrder {
		fmt.Fprintf(&b, "%d. %s\n", i+1, id)
	}

	return b.String()
}
