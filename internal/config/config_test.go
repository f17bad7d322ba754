package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	n, err := cfg.ThresholdBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(10*1024), n)

	opts := cfg.ScanOptions()
	assert.True(t, opts.IncludeDirectories)
	assert.True(t, opts.ShowHidden)
	assert.False(t, opts.FollowSymlinks)
}

func TestLoad_MissingOptionalFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
threshold: 5MB
follow_symlinks: true
include_directories: false
max_depth: 4
concurrency: 2
exclude: [node_modules, .git]
show_hidden: false
cache_dir: /tmp/heft-cache
`)
	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/heft-cache", cfg.CacheDir)
	assert.Equal(t, 5, cfg.CacheKeep)

	n, err := cfg.ThresholdBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), n)

	opts := cfg.ScanOptions()
	assert.True(t, opts.FollowSymlinks)
	assert.False(t, opts.IncludeDirectories)
	assert.False(t, opts.ShowHidden)
	assert.Equal(t, 4, opts.MaxDepth)
	assert.Equal(t, 2, opts.Concurrency)
	assert.Equal(t, []string{"node_modules", ".git"}, opts.ExcludePatterns)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, body, wantErr string
	}{
		{"unknown key", "thresold: 1MB\n", "invalid config"},
		{"bad threshold", "threshold: lots\n", "threshold"},
		{"negative depth", "max_depth: -1\n", "max_depth"},
		{"negative concurrency", "concurrency: -3\n", "concurrency"},
		{"not yaml", "threshold: [\n", "invalid config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), false)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	if p := DefaultPath(); p != "" {
		assert.Equal(t, "config.yaml", filepath.Base(p))
	}
}
