package plan

import (
	"github.com/codeloom/codeloom/internal/errors"
)

// topologicalOrder computes an execution order for tasks using Kahn's
// algorithm. Ties among simultaneously-ready tasks break by input order;
// Priority is advisory metadata and never affects the result.
//
// A cyclic dependency graph is rejected rather than silently dropping the
// cyclic tasks from the order.
func topologicalOrder(tasks []TaskItem) ([]string, error) {
	inDegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))

	for _, task := range tasks {
		if _, ok := inDegree[task.ID]; !ok {
			inDegree[task.ID] = 0
		}
	}
	for _, task := range tasks {
		for _, dep := range task.Dependencies {
			inDegree[task.ID]++
			dependents[dep] = append(dependents[dep], task.ID)
		}
	}

	// Seed the queue in input order so the tie-break is generation order.
	var queue []string
	for _, task := range tasks {
		if inDegree[task.ID] == 0 {
			queue = append(queue, task.ID)
		}
	}

	inputPos := make(map[string]int, len(tasks))
	for i, task := range tasks {
		inputPos[task.ID] = i
	}

	order := make([]string, 0, len(tasks))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		// Newly-ready dependents enqueue in input order for determinism.
		var ready []string
		for _, next := range dependents[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
		sortByInputOrder(ready, inputPos)
		queue = append(queue, ready...)
	}

	if len(order) != len(tasks) {
		// The leftover tasks are the ones participating in (or downstream
		// of) a cycle.
		emitted := make(map[string]bool, len(order))
		for _, id := range order {
			emitted[id] = true
		}
		var cyclic []string
		for _, task := range tasks {
			if !emitted[task.ID] {
				cyclic = append(cyclic, task.ID)
			}
		}
		return nil, errors.NewDependencyCycleError(cyclic)
	}

	return order, nil
}

// sortByInputOrder is a small insertion sort; ready sets are tiny
func sortByInputOrder(ids []string, pos map[string]int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && pos[ids[j]] < pos[ids[j-1]]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
