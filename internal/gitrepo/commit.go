package gitrepo

import (
	"context"
	"fmt"

	"github.com/codeloom/codeloom/internal/errors"
)

// CommitResult reports the outcome of a commit-and-push cycle.
// PushAttempted stays false when pushing was not requested or no remote is
// configured; a skipped push is not a failure.
type CommitResult struct {
	CommitID      string   `json:"commit_id"`
	Committed     bool     `json:"committed"`
	PushAttempted bool     `json:"push_attempted"`
	Pushed        bool     `json:"pushed"`
	Operations    []string `json:"operations"`
}

// CommitAndPush stages all changes, commits them, and optionally pushes the
// current branch. A clean working tree is a no-op success. A push failure
// is recorded as a warning only: the commit already succeeded locally.
func (c *Controller) CommitAndPush(ctx context.Context, message, projectPath string, push bool) (*CommitResult, error) {
	result := &CommitResult{}
	record := func(format string, args ...any) {
		result.Operations = append(result.Operations, fmt.Sprintf(format, args...))
	}

	if !c.HasUncommittedChanges(ctx, projectPath) {
		record("nothing to commit")
		c.observe("commit", true)
		return result, nil
	}

	if _, ok := c.git(ctx, projectPath, "add", "-A"); !ok {
		c.observe("commit", false)
		return result, errors.NewRepositoryOperationError("stage", fmt.Errorf("git add failed"))
	}
	record("staged all changes")

	if res, ok := c.git(ctx, projectPath, "commit", "-m", message); !ok {
		c.observe("commit", false)
		return result, errors.NewRepositoryOperationError("commit", fmt.Errorf("git commit failed: %s", res.Stderr))
	}
	result.Committed = true
	record("committed changes")

	if res, ok := c.git(ctx, projectPath, "rev-parse", "HEAD"); ok {
		result.CommitID = res.Output()
	}

	if c.metrics != nil {
		c.metrics.CommitsCreated.Inc()
	}

	if push {
		if remote := c.RemoteURL(ctx, projectPath); remote != "" {
			result.PushAttempted = true
			branch := c.CurrentBranch(ctx, projectPath)
			if _, ok := c.git(ctx, projectPath, "push", "-u", c.cfg.RemoteName, branch); ok {
				result.Pushed = true
				record("pushed %s", branch)
			} else {
				record("push of %s rejected (commit preserved locally)", branch)
				if c.metrics != nil {
					c.metrics.PushFailures.Inc()
				}
			}
		} else {
			record("no remote configured, skipping push")
		}
	}

	c.observe("commit", true)
	c.logger.Info("commit complete",
		"commit", result.CommitID,
		"pushed", result.Pushed)

	return result, nil
}
