// Package gitrepo brings a project working directory to a known
// version-control state and publishes accumulated changes. Every operation
// is safe to call when the desired state already holds, and all process
// invocations go through the procexec.Runner port.
package gitrepo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codeloom/codeloom/internal/config"
	"github.com/codeloom/codeloom/internal/log"
	"github.com/codeloom/codeloom/internal/metrics"
	"github.com/codeloom/codeloom/internal/procexec"
)

// Controller performs all version-control lifecycle operations
type Controller struct {
	cfg     config.Config
	runner  procexec.Runner
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewController creates a Controller. The metrics argument may be nil.
func NewController(cfg config.Config, runner procexec.Runner, logger *log.Logger, m *metrics.Metrics) *Controller {
	return &Controller{
		cfg:     cfg,
		runner:  runner,
		logger:  logger.With("component", "gitrepo"),
		metrics: m,
	}
}

// git runs the configured version-control binary in dir. A non-zero exit
// code is a step-level failure, never a crash.
func (c *Controller) git(ctx context.Context, dir string, args ...string) (procexec.Result, bool) {
	argv := append([]string{c.cfg.GitBinary}, args...)
	result, err := c.runner.Run(ctx, dir, argv)
	if err != nil {
		c.logger.Warn("git invocation failed", "args", strings.Join(args, " "), "error", err.Error())
		return result, false
	}
	return result, result.ExitCode == 0
}

func (c *Controller) observe(operation string, ok bool) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	c.metrics.RepoOperations.WithLabelValues(operation, status).Inc()
}

// IsRepository reports whether dir is under version control
func (c *Controller) IsRepository(ctx context.Context, dir string) bool {
	_, ok := c.git(ctx, dir, "rev-parse", "--git-dir")
	return ok
}

// CurrentBranch returns the checked-out branch, or "" outside a repository
func (c *Controller) CurrentBranch(ctx context.Context, dir string) string {
	result, ok := c.git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if !ok {
		return ""
	}
	return result.Output()
}

// RemoteURL returns the configured remote address, or "" when none is attached
func (c *Controller) RemoteURL(ctx context.Context, dir string) string {
	result, ok := c.git(ctx, dir, "remote", "get-url", c.cfg.RemoteName)
	if !ok {
		return ""
	}
	return result.Output()
}

// HasUncommittedChanges reports whether the working tree is dirty
func (c *Controller) HasUncommittedChanges(ctx context.Context, dir string) bool {
	result, ok := c.git(ctx, dir, "status", "--porcelain")
	return ok && result.Output() != ""
}

// BuildCommitMessage renders the conventional commit message for a build
func BuildCommitMessage(projectName string, now time.Time) string {
	return fmt.Sprintf("chore: automated build for %s (%s)", projectName, now.UTC().Format(time.RFC3339))
}

// parseAheadBehind parses "git rev-list --left-right --count" output
func parseAheadBehind(output string) (ahead, behind int) {
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return 0, 0
	}
	// left-right of remote...HEAD: left is behind, right is ahead
	behind, _ = strconv.Atoi(fields[0])
	ahead, _ = strconv.Atoi(fields[1])
	return ahead, behind
}
