package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "main", cfg.DefaultBranch)
	assert.Equal(t, "origin", cfg.RemoteName)
	assert.Equal(t, "git", cfg.GitBinary)
	assert.True(t, cfg.Push)
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codeloom.yaml")
	content := []byte("workspace_root: /srv/builds\nremote_url: https://example.com/org/app.git\npush: false\n")
	require.NoError(t, os.WriteFile(path, content, 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/builds", cfg.WorkspaceRoot)
	assert.Equal(t, "https://example.com/org/app.git", cfg.RemoteURL)
	assert.False(t, cfg.Push)
	// Untouched fields keep their defaults.
	assert.Equal(t, "main", cfg.DefaultBranch)
	assert.Equal(t, "git", cfg.GitBinary)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid defaults", func(c *Config) {}, true},
		{"empty workspace", func(c *Config) { c.WorkspaceRoot = "" }, false},
		{"empty plans dir", func(c *Config) { c.PlansDir = " " }, false},
		{"empty branch", func(c *Config) { c.DefaultBranch = "" }, false},
		{"empty git binary", func(c *Config) { c.GitBinary = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "codeloom.yaml")

	cfg := Default()
	cfg.RemoteURL = "git@example.com:org/app.git"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
