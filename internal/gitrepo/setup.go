package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeloom/codeloom/internal/errors"
)

// SetupResult reports where the working directory lives and which
// operations actually executed, also on partial failure.
type SetupResult struct {
	ProjectPath string   `json:"project_path"`
	Operations  []string `json:"operations"`
}

// skeletonDirs is the baseline directory layout every project receives
var skeletonDirs = []string{"backend", "frontend", "docs", "database", "tests"}

// Setup brings the project working directory to a known version-control
// state: detect-or-initialize, attach remote, sync the default branch, and
// switch to the requested build branch. Each step tolerates failure
// individually; only an uncreatable working directory is fatal.
func (c *Controller) Setup(ctx context.Context, projectName, branchName, remoteURL string) (*SetupResult, error) {
	result := &SetupResult{}
	record := func(format string, args ...any) {
		result.Operations = append(result.Operations, fmt.Sprintf(format, args...))
	}

	// Step 1: the directory itself. This is the only fatal step.
	projectPath, err := filepath.Abs(filepath.Join(c.cfg.WorkspaceRoot, projectName))
	if err != nil {
		return nil, errors.NewRepoDirCreateError(projectName, err)
	}
	if err := os.MkdirAll(projectPath, 0750); err != nil {
		c.observe("setup", false)
		return nil, errors.NewRepoDirCreateError(projectPath, err)
	}
	result.ProjectPath = projectPath
	record("ensured directory %s", projectPath)

	// Step 2/3: initialize a fresh repository or reuse the existing one.
	if !c.IsRepository(ctx, projectPath) {
		if _, ok := c.git(ctx, projectPath, "init", "-b", c.cfg.DefaultBranch); ok {
			record("initialized repository on %s", c.cfg.DefaultBranch)
		} else {
			record("repository initialization failed")
		}
		if remoteURL != "" {
			c.attachRemote(ctx, projectPath, remoteURL, record)
		}
	} else {
		record("reusing existing repository")
		if remoteURL != "" && c.RemoteURL(ctx, projectPath) == "" {
			c.attachRemote(ctx, projectPath, remoteURL, record)
		}
	}

	// Step 4: sync the default branch when a remote is available.
	if c.RemoteURL(ctx, projectPath) != "" {
		c.syncDefaultBranch(ctx, projectPath, record)
	}

	// Step 5: switch to the requested build branch.
	c.switchBranch(ctx, projectPath, branchName, record)

	// Step 6: the baseline skeleton is created regardless of how the
	// repository steps went.
	for _, dir := range skeletonDirs {
		if err := os.MkdirAll(filepath.Join(projectPath, dir), 0750); err != nil {
			record("skeleton directory %s failed: %v", dir, err)
		}
	}
	record("created project skeleton")

	c.observe("setup", true)
	c.logger.Info("repository setup complete",
		"path", projectPath,
		"branch", c.CurrentBranch(ctx, projectPath),
		"operations", len(result.Operations))

	return result, nil
}

func (c *Controller) attachRemote(ctx context.Context, dir, remoteURL string, record func(string, ...any)) {
	if _, ok := c.git(ctx, dir, "remote", "add", c.cfg.RemoteName, remoteURL); ok {
		record("attached remote %s", remoteURL)
	} else {
		record("attaching remote failed")
	}
}

func (c *Controller) syncDefaultBranch(ctx context.Context, dir string, record func(string, ...any)) {
	if _, ok := c.git(ctx, dir, "fetch", c.cfg.RemoteName); ok {
		record("fetched %s", c.cfg.RemoteName)
	} else {
		record("fetch failed (continuing with local content)")
		return
	}

	defaultBranch := c.cfg.DefaultBranch
	if c.CurrentBranch(ctx, dir) != defaultBranch {
		if _, ok := c.git(ctx, dir, "checkout", defaultBranch); ok {
			record("checked out %s", defaultBranch)
		} else if _, ok := c.git(ctx, dir, "checkout", "-b", defaultBranch,
			c.cfg.RemoteName+"/"+defaultBranch); ok {
			record("created tracking branch %s", defaultBranch)
		} else {
			record("checkout of %s failed", defaultBranch)
		}
	}

	if c.CurrentBranch(ctx, dir) == defaultBranch {
		// Pull failures are non-fatal; local content wins.
		if _, ok := c.git(ctx, dir, "pull", c.cfg.RemoteName, defaultBranch); ok {
			record("pulled %s", defaultBranch)
		} else {
			record("pull failed (continuing with local content)")
		}
	}
}

func (c *Controller) switchBranch(ctx context.Context, dir, branchName string, record func(string, ...any)) {
	if branchName == "" || c.CurrentBranch(ctx, dir) == branchName {
		return
	}

	if _, ok := c.git(ctx, dir, "rev-parse", "--verify", "refs/heads/"+branchName); ok {
		if _, ok := c.git(ctx, dir, "checkout", branchName); ok {
			record("checked out %s", branchName)
			return
		}
	} else if _, ok := c.git(ctx, dir, "checkout", "-b", branchName); ok {
		record("created branch %s", branchName)
		return
	}
	record("switching to %s failed", branchName)
}
