// Package config holds the single explicit configuration value constructed at
// process start and passed into the planner, workflow engine, and repository
// controller. No component reads ambient global state.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codeloom/codeloom/internal/errors"
)

// Config contains all settings for a build run
type Config struct {
	// WorkspaceRoot is the directory under which project working
	// directories are created
	WorkspaceRoot string `yaml:"workspace_root"`

	// PlansDir is where execution plan artifacts are persisted
	PlansDir string `yaml:"plans_dir"`

	// DefaultBranch is the branch a fresh repository is initialized on
	DefaultBranch string `yaml:"default_branch"`

	// RemoteURL is the optional remote repository address
	RemoteURL string `yaml:"remote_url,omitempty"`

	// RemoteName is the name used when attaching the remote
	RemoteName string `yaml:"remote_name"`

	// Push controls whether commits are pushed after a successful build
	Push bool `yaml:"push"`

	// GeneratorCommand is the argv template for the external code generator.
	// Empty means the built-in scaffold generator is used.
	GeneratorCommand []string `yaml:"generator_command,omitempty"`

	// GitBinary is the version-control executable, default "git"
	GitBinary string `yaml:"git_binary"`

	// LogLevel and LogFormat configure the structured logger
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		WorkspaceRoot: "workspace",
		PlansDir:      filepath.Join("workspace", ".codeloom", "plans"),
		DefaultBranch: "main",
		RemoteName:    "origin",
		Push:          true,
		GitBinary:     "git",
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// Load reads a configuration file and merges it over the defaults.
// A missing file is an error; use LoadOrDefault when the file is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.NewConfigNotFoundError(path)
		}
		return cfg, errors.Wrap(errors.ErrCodeFileReadFailed, "read config file", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadOrDefault loads the configuration file if present and returns the
// defaults otherwise.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		var loomErr *errors.LoomError
		if stderrors.As(err, &loomErr) && loomErr.Code == errors.ErrCodeConfigNotFound {
			return Default(), nil
		}
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	if strings.TrimSpace(c.WorkspaceRoot) == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "workspace_root cannot be empty")
	}
	if strings.TrimSpace(c.PlansDir) == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "plans_dir cannot be empty")
	}
	if strings.TrimSpace(c.DefaultBranch) == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "default_branch cannot be empty")
	}
	if strings.TrimSpace(c.GitBinary) == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "git_binary cannot be empty")
	}
	return nil
}

// Save writes the configuration to a YAML file
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create config directory", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write config file", err)
	}

	return nil
}
