package plan

import (
	"fmt"
	"strings"

	"github.com/codeloom/codeloom/internal/errors"
)

// Validate checks if the TaskItem is valid
func (t *TaskItem) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id cannot be empty")
	}

	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("task name cannot be empty")
	}

	if !t.Category.IsValid() {
		return fmt.Errorf("unknown task category %q", t.Category)
	}

	if t.Priority <= 0 {
		return fmt.Errorf("priority must be positive, got %d", t.Priority)
	}

	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return fmt.Errorf("task %s depends on itself", t.ID)
		}
	}

	return nil
}

// Validate checks if the ExecutionPlan is internally consistent
func (p *ExecutionPlan) Validate() error {
	if len(p.Tasks) == 0 {
		return errors.NewPlanInvalidError("plan must have at least one task")
	}

	taskIDs := make(map[string]bool, len(p.Tasks))
	for i, task := range p.Tasks {
		if err := task.Validate(); err != nil {
			return errors.NewPlanInvalidError(fmt.Sprintf("task at index %d (%s): %v", i, task.ID, err))
		}

		if taskIDs[task.ID] {
			return errors.NewPlanInvalidError(fmt.Sprintf("duplicate task id %q at index %d", task.ID, i))
		}
		taskIDs[task.ID] = true
	}

	// Every dependency must reference a task present in the same plan.
	for _, task := range p.Tasks {
		for _, dep := range task.Dependencies {
			if !taskIDs[dep] {
				return errors.NewPlanInvalidError(fmt.Sprintf("task %s depends on unknown task %q", task.ID, dep))
			}
		}
	}

	// The execution order must be a permutation of all task ids.
	if len(p.ExecutionOrder) != len(p.Tasks) {
		return errors.NewPlanInvalidError(fmt.Sprintf(
			"execution order has %d entries for %d tasks", len(p.ExecutionOrder), len(p.Tasks)))
	}
	seen := make(map[string]bool, len(p.ExecutionOrder))
	for _, id := range p.ExecutionOrder {
		if !taskIDs[id] {
			return errors.NewPlanInvalidError(fmt.Sprintf("execution order references unknown task %q", id))
		}
		if seen[id] {
			return errors.NewPlanInvalidError(fmt.Sprintf("execution order lists task %q twice", id))
		}
		seen[id] = true
	}

	// Every dependency must precede its dependent in the order.
	position := make(map[string]int, len(p.ExecutionOrder))
	for i, id := range p.ExecutionOrder {
		position[id] = i
	}
	for _, task := range p.Tasks {
		for _, dep := range task.Dependencies {
			if position[dep] >= position[task.ID] {
				return errors.NewPlanInvalidError(fmt.Sprintf(
					"task %s is ordered before its dependency %s", task.ID, dep))
			}
		}
	}

	return nil
}
