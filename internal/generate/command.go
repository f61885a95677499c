package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeloom/codeloom/internal/errors"
	"github.com/codeloom/codeloom/internal/log"
	"github.com/codeloom/codeloom/internal/plan"
	"github.com/codeloom/codeloom/internal/procexec"
)

// CommandGenerator invokes a configured external generator through the
// process-runner port. The command receives the task identity as arguments
// and is expected to print one project-relative file path per stdout line.
type CommandGenerator struct {
	command []string
	runner  procexec.Runner
	logger  *log.Logger
}

// NewCommandGenerator creates a generator backed by the given argv template
func NewCommandGenerator(command []string, runner procexec.Runner, logger *log.Logger) *CommandGenerator {
	return &CommandGenerator{
		command: command,
		runner:  runner,
		logger:  logger.With("component", "generate"),
	}
}

// Generate runs the configured command for one task
func (g *CommandGenerator) Generate(ctx context.Context, task plan.TaskItem, projectPath string) (*GenerationResult, error) {
	if len(g.command) == 0 {
		return nil, errors.NewTaskExecutionError(task.ID, fmt.Errorf("no generator command configured"))
	}

	argv := make([]string, 0, len(g.command)+6)
	argv = append(argv, g.command...)
	argv = append(argv,
		"--task", task.ID,
		"--category", string(task.Category),
		"--name", task.Name,
	)

	result, err := g.runner.Run(ctx, projectPath, argv)
	if err != nil {
		return nil, errors.NewTaskExecutionError(task.ID, err)
	}
	if result.ExitCode != 0 {
		return nil, errors.NewTaskExecutionError(task.ID,
			fmt.Errorf("generator exited with code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr)))
	}

	gen := &GenerationResult{Output: result.Output()}
	for _, line := range strings.Split(result.Stdout, "\n") {
		if path := strings.TrimSpace(line); path != "" {
			gen.Files = append(gen.Files, path)
		}
	}

	g.logger.Debug("generator finished",
		"task", task.ID,
		"files", len(gen.Files),
		"duration", result.Duration)

	return gen, nil
}
