package plan

import "time"

// TaskCategory determines which external collaborator executes a task
type TaskCategory string

const (
	CategorySetup    TaskCategory = "setup"
	CategoryDocs     TaskCategory = "docs"
	CategoryBackend  TaskCategory = "backend"
	CategoryFrontend TaskCategory = "frontend"
	CategoryDatabase TaskCategory = "database"
	CategoryTest     TaskCategory = "test"
	CategoryGit      TaskCategory = "git"
)

// IsValid returns true if this is a recognized category
func (c TaskCategory) IsValid() bool {
	switch c {
	case CategorySetup, CategoryDocs, CategoryBackend, CategoryFrontend,
		CategoryDatabase, CategoryTest, CategoryGit:
		return true
	default:
		return false
	}
}

// TaskStatus tracks a task through its lifecycle:
// pending -> in_progress -> {completed | failed}
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// IsTerminal returns true if the status is final
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TaskItem is a single unit of build work
type TaskItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    TaskCategory `json:"category"`

	// Priority is advisory only: lower values group earlier in the
	// human-readable rendering but do not affect execution order.
	Priority int `json:"priority"`

	// EstimatedEffort is a sizing hint, not used for scheduling
	EstimatedEffort float64 `json:"estimated_effort"`

	// Dependencies lists task ids that must reach a terminal status
	// before this task is attempted
	Dependencies []string `json:"dependencies"`

	Status TaskStatus `json:"status"`
}

// ExecutionPlan is the durable artifact produced once per build request.
// It is never mutated after creation; task status updates are tracked in
// the progress file, not by rewriting the plan.
type ExecutionPlan struct {
	PlanID      string    `json:"plan_id"`
	ProjectName string    `json:"project_name"`
	BranchName  string    `json:"branch_name"`
	CreatedAt   time.Time `json:"created_at"`

	Tasks []TaskItem `json:"tasks"`

	// DependencyGraph is redundant with TaskItem.Dependencies but kept as
	// an explicit adjacency structure for persistence and visualization
	DependencyGraph map[string][]string `json:"dependency_graph"`

	// ExecutionOrder is a topological order over DependencyGraph
	ExecutionOrder []string `json:"execution_order"`
}

// TaskByID returns the task with the given id, or nil
func (p *ExecutionPlan) TaskByID(id string) *TaskItem {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// TasksByCategory returns all tasks of the given categories, in plan order
func (p *ExecutionPlan) TasksByCategory(categories ...TaskCategory) []TaskItem {
	want := make(map[TaskCategory]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}

	var out []TaskItem
	for _, task := range p.Tasks {
		if want[task.Category] {
			out = append(out, task)
		}
	}
	return out
}

// OrderedTasks returns the plan's tasks sorted by ExecutionOrder
func (p *ExecutionPlan) OrderedTasks() []TaskItem {
	out := make([]TaskItem, 0, len(p.ExecutionOrder))
	for _, id := range p.ExecutionOrder {
		if t := p.TaskByID(id); t != nil {
			out = append(out, *t)
		}
	}
	return out
}
