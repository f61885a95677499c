// Package procexec provides the process-execution port used to invoke
// external binaries. The repository controller and the command-backed code
// generator never shell out directly; they go through a Runner so tests can
// substitute a deterministic fake.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Result represents the outcome of a process invocation
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Output returns the trimmed standard output
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout)
}

// Runner executes an external process in a working directory.
// A non-zero exit code is reported through Result, not through the error;
// the error is reserved for failures to start the process at all.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) (Result, error)
}

// LocalRunner executes processes on the local machine
type LocalRunner struct{}

// NewLocalRunner creates a Runner backed by os/exec
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes argv in dir and captures stdout/stderr
func (r *LocalRunner) Run(ctx context.Context, dir string, argv []string) (Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
