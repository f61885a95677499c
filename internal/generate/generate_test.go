package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeloom/codeloom/internal/errors"
	"github.com/codeloom/codeloom/internal/log"
	"github.com/codeloom/codeloom/internal/plan"
	"github.com/codeloom/codeloom/internal/procexec"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{
		Level:  log.LevelError,
		Format: log.FormatText,
		Output: log.NewOutput(io.Discard),
	})
}

func backendTask() plan.TaskItem {
	return plan.TaskItem{
		ID:          "backend-order-service",
		Name:        "Implement order service",
		Description: "Backend module for order handling",
		Category:    plan.CategoryBackend,
		Priority:    2,
	}
}

func TestCommandGeneratorPassesTaskIdentity(t *testing.T) {
	fake := procexec.NewFakeRunner().
		Stub("loomgen", procexec.Result{Stdout: "backend/orders.go\nbackend/orders_test.go\n"})

	gen := NewCommandGenerator([]string{"loomgen", "--mode", "task"}, fake, quietLogger())

	result, err := gen.Generate(context.Background(), backendTask(), "/work/shop")
	require.NoError(t, err)

	assert.Equal(t, []string{"backend/orders.go", "backend/orders_test.go"}, result.Files)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/work/shop", calls[0].Dir)
	assert.Equal(t, []string{
		"loomgen", "--mode", "task",
		"--task", "backend-order-service",
		"--category", "backend",
		"--name", "Implement order service",
	}, calls[0].Argv)
}

func TestCommandGeneratorNonZeroExit(t *testing.T) {
	fake := procexec.NewFakeRunner().
		Stub("loomgen", procexec.Result{ExitCode: 2, Stderr: "template not found"})

	gen := NewCommandGenerator([]string{"loomgen"}, fake, quietLogger())

	_, err := gen.Generate(context.Background(), backendTask(), t.TempDir())
	require.Error(t, err)

	var loomErr *errors.LoomError
	require.ErrorAs(t, err, &loomErr)
	assert.Equal(t, errors.ErrCodeTaskExecutionFailed, loomErr.Code)
	assert.Contains(t, err.Error(), "template not found")
}

func TestCommandGeneratorStartFailure(t *testing.T) {
	fake := procexec.NewFakeRunner().
		StubError("loomgen", fmt.Errorf("executable not found"))

	gen := NewCommandGenerator([]string{"loomgen"}, fake, quietLogger())

	_, err := gen.Generate(context.Background(), backendTask(), t.TempDir())
	require.Error(t, err)
}

func TestScaffoldGeneratorWritesPlaceholder(t *testing.T) {
	root := t.TempDir()
	gen := NewScaffoldGenerator(quietLogger())

	result, err := gen.Generate(context.Background(), backendTask(), root)
	require.NoError(t, err)
	require.Equal(t, []string{"backend/backend-order-service.md"}, result.Files)

	data, err := os.ReadFile(filepath.Join(root, "backend", "backend-order-service.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Implement order service")
	assert.Contains(t, string(data), "backend-order-service")
}

func TestScaffoldGeneratorSetupTaskLandsInRoot(t *testing.T) {
	root := t.TempDir()
	gen := NewScaffoldGenerator(quietLogger())

	task := plan.TaskItem{
		ID:       "setup-project",
		Name:     "Initialize project workspace",
		Category: plan.CategorySetup,
		Priority: 1,
	}

	result, err := gen.Generate(context.Background(), task, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"project.md"}, result.Files)
	assert.FileExists(t, filepath.Join(root, "project.md"))
}
