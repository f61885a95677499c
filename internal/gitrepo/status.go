package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"sort"
)

// Status is a point-in-time view of a working directory's version-control
// state. Pure query, no mutation.
type Status struct {
	IsRepo                bool   `json:"is_repo"`
	CurrentBranch         string `json:"current_branch"`
	HasUncommittedChanges bool   `json:"has_uncommitted_changes"`
	RemoteURL             string `json:"remote_url,omitempty"`
	Ahead                 int    `json:"ahead"`
	Behind                int    `json:"behind"`
	LastCommit            string `json:"last_commit,omitempty"`
}

// GetRepositoryStatus queries the repository state of projectPath.
// Ahead/behind counts require a remote and a successful fetch and default
// to zero when either is unavailable.
func (c *Controller) GetRepositoryStatus(ctx context.Context, projectPath string) (*Status, error) {
	status := &Status{}

	if !c.IsRepository(ctx, projectPath) {
		return status, nil
	}
	status.IsRepo = true
	status.CurrentBranch = c.CurrentBranch(ctx, projectPath)
	status.HasUncommittedChanges = c.HasUncommittedChanges(ctx, projectPath)
	status.RemoteURL = c.RemoteURL(ctx, projectPath)

	if res, ok := c.git(ctx, projectPath, "log", "-1", "--format=%H"); ok {
		status.LastCommit = res.Output()
	}

	if status.RemoteURL != "" && status.CurrentBranch != "" {
		if _, ok := c.git(ctx, projectPath, "fetch", c.cfg.RemoteName); ok {
			upstream := c.cfg.RemoteName + "/" + status.CurrentBranch
			if res, ok := c.git(ctx, projectPath, "rev-list", "--left-right", "--count",
				upstream+"...HEAD"); ok {
				status.Ahead, status.Behind = parseAheadBehind(res.Output())
			}
		}
	}

	return status, nil
}

// Structure describes what already exists in a project directory. Used by
// environment setup to decide between treating the directory as fresh or
// as an existing project to augment.
type Structure struct {
	HasBackend    bool     `json:"has_backend"`
	HasFrontend   bool     `json:"has_frontend"`
	HasDatabase   bool     `json:"has_database"`
	HasDocs       bool     `json:"has_docs"`
	ExistingFiles []string `json:"existing_files"`
}

// maxListedFiles bounds the file listing in Structure
const maxListedFiles = 200

// IsFresh reports whether the directory carries no recognizable content
func (s *Structure) IsFresh() bool {
	return !s.HasBackend && !s.HasFrontend && !s.HasDatabase && len(s.ExistingFiles) == 0
}

// AnalyzeExistingStructure inspects a project directory without mutating it
func (c *Controller) AnalyzeExistingStructure(projectPath string) (*Structure, error) {
	structure := &Structure{}

	entries, err := os.ReadDir(projectPath)
	if err != nil {
		if os.IsNotExist(err) {
			return structure, nil
		}
		return nil, err
	}

	markers := map[string]*bool{
		"backend":  &structure.HasBackend,
		"src":      &structure.HasBackend,
		"frontend": &structure.HasFrontend,
		"web":      &structure.HasFrontend,
		"database": &structure.HasDatabase,
		"db":       &structure.HasDatabase,
		"docs":     &structure.HasDocs,
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if flag, ok := markers[entry.Name()]; ok {
				*flag = true
			}
		}
	}

	// Bounded recursive listing, version-control internals excluded.
	err = filepath.WalkDir(projectPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if len(structure.ExistingFiles) >= maxListedFiles {
			return filepath.SkipAll
		}
		rel, relErr := filepath.Rel(projectPath, path)
		if relErr != nil {
			return nil
		}
		structure.ExistingFiles = append(structure.ExistingFiles, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(structure.ExistingFiles)
	return structure, nil
}
