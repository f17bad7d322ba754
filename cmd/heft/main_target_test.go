package main

import (
	"bytes"
	"flag"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/heft/internal/config"
	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/scanner"
	"github.com/sadopc/heft/internal/volume"
)

func TestResolveScanTarget_DefaultLocal(t *testing.T) {
	target, err := resolveScanTarget(nil)
	require.NoError(t, err)
	assert.False(t, target.Remote)
	assert.Equal(t, ".", target.LocalPath)
}

func TestResolveScanTarget_ExistingLocalPathWins(t *testing.T) {
	root := t.TempDir()
	localPath := filepath.Join(root, "alice@server")
	require.NoError(t, os.Mkdir(localPath, 0o755))

	target, err := resolveScanTarget([]string{localPath})
	require.NoError(t, err)
	assert.False(t, target.Remote)
	assert.Equal(t, localPath, target.LocalPath)

	_, err = resolveScanTarget([]string{localPath, "/tmp"})
	assert.Error(t, err)
}

func TestResolveScanTarget_Remote(t *testing.T) {
	target, err := resolveScanTarget([]string{"alice@10.0.0.5"})
	require.NoError(t, err)
	assert.True(t, target.Remote)
	assert.Equal(t, "alice@10.0.0.5", target.SSHDestination)
	assert.Equal(t, ".", target.RemotePath)

	target, err = resolveScanTarget([]string{"alice@10.0.0.5", "/var/log"})
	require.NoError(t, err)
	assert.Equal(t, "/var/log", target.RemotePath)

	target, err = resolveScanTarget([]string{"alice@[::1]"})
	require.NoError(t, err)
	assert.True(t, target.Remote)
	assert.Equal(t, "alice@[::1]", target.SSHDestination)
}

func TestResolveScanTarget_RejectsHostPort(t *testing.T) {
	for _, raw := range []string{"alice@example.com:2222", "alice@[::1]:2222"} {
		_, err := resolveScanTarget([]string{raw})
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "--ssh-port", raw)
	}
}

func TestResolveScanTarget_RejectsMalformedRemote(t *testing.T) {
	for _, raw := range []string{"@host", "alice@", "alice@[]", "alice@[::1", "alice@ho]st", "-o@host"} {
		_, err := resolveScanTarget([]string{raw})
		assert.Error(t, err, raw)
	}
}

func parseFlags(t *testing.T, args ...string) *cliFlags {
	t.Helper()
	fs := flag.NewFlagSet("heft", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := registerFlags(fs)
	require.NoError(t, fs.Parse(args))
	f.visit(fs)
	return f
}

func TestSettings_ConfigDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Threshold = "5MB"
	cfg.Exclude = []string{"node_modules"}
	cfg.MaxDepth = 3

	threshold, opts, err := settings(cfg, parseFlags(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), threshold)
	assert.Equal(t, []string{"node_modules"}, opts.ExcludePatterns)
	assert.Equal(t, 3, opts.MaxDepth)
	assert.True(t, opts.IncludeDirectories)
	assert.True(t, opts.ShowHidden)
}

func TestSettings_FlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Threshold = "5MB"
	cfg.Exclude = []string{"node_modules"}
	cfg.MaxDepth = 3
	cfg.FollowSymlinks = true

	f := parseFlags(t, "-t", "1KiB", "--no-dirs", "--no-hidden", "--exclude", "a, b",
		"--max-depth", "0", "-j", "4", "--follow-symlinks=false")
	threshold, opts, err := settings(cfg, f)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), threshold)
	assert.False(t, opts.IncludeDirectories)
	assert.False(t, opts.ShowHidden)
	assert.False(t, opts.FollowSymlinks)
	assert.Equal(t, 0, opts.MaxDepth)
	assert.Equal(t, 4, opts.Concurrency)
	assert.Equal(t, []string{"node_modules", "a", "b"}, opts.ExcludePatterns)
}

func TestSettings_ThresholdZeroAllowed(t *testing.T) {
	threshold, _, err := settings(config.Default(), parseFlags(t, "--threshold", "0"))
	require.NoError(t, err)
	assert.Zero(t, threshold)
}

func TestValidateFlags(t *testing.T) {
	assert.NoError(t, validateFlags(parseFlags(t, "--list")))
	assert.Error(t, validateFlags(parseFlags(t, "-t", "1", "--threshold", "2")))
	assert.Error(t, validateFlags(parseFlags(t, "--max-depth", "-1")))
	assert.Error(t, validateFlags(parseFlags(t, "--ssh-port", "70000")))
}

func TestRunLocal_MissingRootIsNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	var out bytes.Buffer
	c := &cli{flags: parseFlags(t, "--list"), logger: slog.New(slog.DiscardHandler), stdout: &out}

	err := c.runLocal(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, scanner.ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, out.String())
}

func TestPrintList(t *testing.T) {
	report := &model.ScanReport{
		Root:           "/data",
		ThresholdBytes: 1024,
		Entries: []model.Entry{
			model.NewEntry("/data/media/movie.mkv", true, 8<<20),
			model.NewEntry("/data/media", false, 8<<20),
			model.NewEntry("/data/backup.tar.gz", true, 4<<20),
		},
		Errors:       []model.Issue{{Path: "/data/secret", Reason: model.ReasonPermissionDenied, Detail: "readdir: permission denied"}},
		TotalBytes:   12 << 20,
		FilesScanned: 2,
		DirsScanned:  2,
		DurationMS:   5,
	}
	vol := &volume.Info{Path: "/", Total: 100 << 30, Free: 40 << 30, Used: 60 << 30}

	var buf bytes.Buffer
	printList(&buf, report, vol)
	out := buf.String()

	assert.Contains(t, out, "/data  (>= 1.0 KB, 3 matches, 12.0 MB reclaimable)")
	assert.Contains(t, out, "    8.0 MB  media/movie.mkv\n")
	assert.Contains(t, out, "    8.0 MB  media/\n")
	assert.Contains(t, out, "  PermissionDenied  secret (readdir: permission denied)")
	assert.Contains(t, out, "Volume: "+vol.String())
}
