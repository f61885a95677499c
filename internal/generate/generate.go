// Package generate defines the code-generator port used by the workflow's
// CODE_GENERATION and TESTING phases, plus the two built-in implementations:
// one that shells out to a configured generator command and one that
// scaffolds placeholder sources without external tooling.
package generate

import (
	"context"

	"github.com/codeloom/codeloom/internal/plan"
)

// GenerationResult reports what a generator produced for one task
type GenerationResult struct {
	// Files are project-relative paths of created or modified files
	Files []string `json:"files"`

	// Output is the generator's captured textual output, if any
	Output string `json:"output,omitempty"`
}

// Generator produces code for a single task inside the project directory
type Generator interface {
	Generate(ctx context.Context, task plan.TaskItem, projectPath string) (*GenerationResult, error)
}
