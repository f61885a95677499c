package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codeloom/codeloom/internal/errors"
	"github.com/codeloom/codeloom/internal/log"
	"github.com/codeloom/codeloom/internal/plan"
)

// ScaffoldGenerator is the built-in fallback used when no external generator
// command is configured. It writes a placeholder source file per task into
// the category's skeleton directory so the build still produces a reviewable,
// committable tree.
type ScaffoldGenerator struct {
	logger *log.Logger
	now    func() time.Time
}

// NewScaffoldGenerator creates the built-in scaffold generator
func NewScaffoldGenerator(logger *log.Logger) *ScaffoldGenerator {
	return &ScaffoldGenerator{
		logger: logger.With("component", "generate"),
		now:    time.Now,
	}
}

// categoryDirs maps task categories onto the project skeleton
var categoryDirs = map[plan.TaskCategory]string{
	plan.CategorySetup:    ".",
	plan.CategoryDocs:     "docs",
	plan.CategoryBackend:  "backend",
	plan.CategoryFrontend: "frontend",
	plan.CategoryDatabase: "database",
	plan.CategoryTest:     "tests",
	plan.CategoryGit:      ".",
}

// Generate writes the placeholder file for one task
func (g *ScaffoldGenerator) Generate(_ context.Context, task plan.TaskItem, projectPath string) (*GenerationResult, error) {
	dir, ok := categoryDirs[task.Category]
	if !ok {
		dir = "."
	}

	name := task.ID
	if dir == "." {
		name = strings.TrimPrefix(task.ID, string(task.Category)+"-")
	}
	relPath := filepath.Join(dir, name+".md")

	content := fmt.Sprintf("# %s\n\n%s\n\nGenerated %s for task `%s`.\n",
		task.Name, task.Description, g.now().UTC().Format(time.RFC3339), task.ID)

	absPath := filepath.Join(projectPath, relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0750); err != nil {
		return nil, errors.NewTaskExecutionError(task.ID, err)
	}
	if err := os.WriteFile(absPath, []byte(content), 0600); err != nil {
		return nil, errors.NewTaskExecutionError(task.ID, err)
	}

	g.logger.Debug("scaffolded placeholder", "task", task.ID, "file", relPath)

	return &GenerationResult{Files: []string{filepath.ToSlash(relPath)}}, nil
}
