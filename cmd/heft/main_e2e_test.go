package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ops"
)

const helperEnvKey = "GO_WANT_HEFT_HELPER_PROCESS"

type cliResult struct {
	stdout   string
	stderr   string
	exitCode int
}

func TestCLIHelperProcess(t *testing.T) {
	if os.Getenv(helperEnvKey) != "1" {
		return
	}

	sep := -1
	for i, arg := range os.Args {
		if arg == "--" {
			sep = i
			break
		}
	}
	if sep == -1 {
		fmt.Fprintln(os.Stderr, "missing -- argument separator for helper process")
		os.Exit(2)
	}

	os.Args = append([]string{os.Args[0]}, os.Args[sep+1:]...)
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	main()
	os.Exit(0)
}

func TestE2E_HeadlessExportImportRoundTrip(t *testing.T) {
	scanRoot := createScanFixture(t)
	exportPath := filepath.Join(t.TempDir(), "scan.json")

	result := runCLI(t, "-t", "1KiB", "--export", exportPath, scanRoot)
	require.Equal(t, 0, result.exitCode, "stdout:\n%s\nstderr:\n%s", result.stdout, result.stderr)
	assert.Contains(t, result.stdout, "Exported to "+exportPath)

	imported, err := ops.ImportReport(exportPath)
	require.NoError(t, err)
	assert.Equal(t, scanRoot, imported.Root)
	assert.Equal(t, uint64(1024), imported.ThresholdBytes)

	paths := entryPaths(imported, scanRoot)
	assert.Contains(t, paths, "keep/sub/big.bin")
	assert.Contains(t, paths, "keep/sub")
	assert.Contains(t, paths, ".hidden.txt")
	assert.NotContains(t, paths, "tiny.txt")
	assert.NotContains(t, paths, "keep/link.txt", "symlinks are not followed by default")
	for _, e := range imported.Entries {
		assert.GreaterOrEqual(t, e.SizeBytes, imported.ThresholdBytes, e.Path)
	}

	reExportPath := filepath.Join(t.TempDir(), "rescan.yaml")
	result = runCLI(t, "--import", exportPath, "--export", reExportPath)
	require.Equal(t, 0, result.exitCode, "stdout:\n%s\nstderr:\n%s", result.stdout, result.stderr)
	assert.Contains(t, result.stdout, "Exported to "+reExportPath)

	reImported, err := ops.ImportReport(reExportPath)
	require.NoError(t, err)
	require.Len(t, reImported.Entries, len(imported.Entries))
	for i, e := range imported.Entries {
		got := reImported.Entries[i]
		assert.Equal(t, e.Path, got.Path)
		assert.Equal(t, e.SizeBytes, got.SizeBytes)
		assert.False(t, e.Modified.IsZero(), e.Path)
		assert.True(t, e.Modified.Equal(got.Modified), e.Path)
	}
	assert.Equal(t, imported.TotalBytes, reImported.TotalBytes)
}

func TestE2E_HeadlessExportHonorsExcludePatterns(t *testing.T) {
	scanRoot := createScanFixture(t)
	exportPath := filepath.Join(t.TempDir(), "scan.json")

	result := runCLI(t, "-t", "1KiB", "--exclude", "skip-one, skip-two", "--export", exportPath, scanRoot)
	require.Equal(t, 0, result.exitCode, "stderr:\n%s", result.stderr)

	imported, err := ops.ImportReport(exportPath)
	require.NoError(t, err)

	paths := entryPaths(imported, scanRoot)
	assert.NotContains(t, paths, "skip-one")
	assert.NotContains(t, paths, "skip-two/ignored.log")
	assert.Contains(t, paths, "keep")
}

func TestE2E_ImportExportFailsWhenImportFileMissing(t *testing.T) {
	missingImport := filepath.Join(t.TempDir(), "missing.json")
	exportPath := filepath.Join(t.TempDir(), "out.json")

	result := runCLI(t, "--import", missingImport, "--export", exportPath)
	assert.NotEqual(t, 0, result.exitCode)
	assert.Contains(t, result.stderr, "Error importing:")
	assert.NoFileExists(t, exportPath)
}

func TestE2E_HeadlessExportToStdoutWritesJSONOnly(t *testing.T) {
	scanRoot := createScanFixture(t)

	result := runCLI(t, "--export", "-", scanRoot)
	require.Equal(t, 0, result.exitCode, "stderr:\n%s", result.stderr)
	assert.NotContains(t, result.stdout, "Scanning ")
	assert.NotContains(t, result.stdout, "Exported to")
	assert.Empty(t, strings.TrimSpace(result.stderr))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(result.stdout), &doc), result.stdout)
	for _, field := range []string{"root", "threshold_bytes", "entries", "errors"} {
		assert.Contains(t, doc, field)
	}
}

func TestE2E_ListPrintsLargestFirst(t *testing.T) {
	scanRoot := createScanFixture(t)

	result := runCLI(t, "-t", "3000", "--no-dirs", "--list", scanRoot)
	require.Equal(t, 0, result.exitCode, "stderr:\n%s", result.stderr)

	out := result.stdout
	assert.Contains(t, out, scanRoot)
	assert.Contains(t, out, "keep/sub/big.bin")
	assert.Contains(t, out, ".hidden.txt")
	assert.NotContains(t, out, "keep/a.txt")
	assert.NotContains(t, out, "keep/sub/\n")
	assert.Less(t, strings.Index(out, "keep/sub/big.bin"), strings.Index(out, "skip-one/ignored.log"))
}

func TestE2E_CacheShowsLastReport(t *testing.T) {
	scanRoot := createScanFixture(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cacheDir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.WriteFile(cfgPath, []byte("threshold: 1KiB\ncache_dir: "+cacheDir+"\n"), 0o644))

	result := runCLI(t, "--config", cfgPath, "--list", scanRoot)
	require.Equal(t, 0, result.exitCode, "stderr:\n%s", result.stderr)
	require.Contains(t, result.stdout, "keep/sub/big.bin")

	require.NoError(t, os.Remove(filepath.Join(scanRoot, "keep", "sub", "big.bin")))

	result = runCLI(t, "--config", cfgPath, "--cache", "--list", scanRoot)
	require.Equal(t, 0, result.exitCode, "stderr:\n%s", result.stderr)
	assert.Contains(t, result.stdout, "keep/sub/big.bin")

	result = runCLI(t, "--config", cfgPath, "--list", scanRoot)
	require.Equal(t, 0, result.exitCode, "stderr:\n%s", result.stderr)
	assert.NotContains(t, result.stdout, "keep/sub/big.bin")
}

func TestE2E_RejectsBadFlags(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-t", "lots", "--list", "."}, "threshold"},
		{[]string{"--hidden", "--no-hidden", "."}, "cannot be used together"},
		{[]string{"--list", "--export", "-", "."}, "both write to stdout"},
		{[]string{"-j", "-1", "."}, "concurrency"},
		{[]string{"--ssh-port", "0", "alice@host"}, "ssh-port"},
	}
	for _, tt := range tests {
		result := runCLI(t, tt.args...)
		assert.Equal(t, 1, result.exitCode, "%v", tt.args)
		assert.Contains(t, result.stderr, tt.want, "%v", tt.args)
	}
}

func TestE2E_ImportRejectsScanTargets(t *testing.T) {
	importPath := filepath.Join(t.TempDir(), "scan.json")

	result := runCLI(t, "--import", importPath, "alice@10.0.0.2")
	assert.NotEqual(t, 0, result.exitCode)
	assert.Contains(t, result.stderr, "--import cannot be used with scan targets")
}

func TestE2E_FileRootListsItself(t *testing.T) {
	scanRoot := createScanFixture(t)
	file := filepath.Join(scanRoot, "keep", "sub", "big.bin")

	result := runCLI(t, "-t", "1KiB", "--list", file)
	require.Equal(t, 0, result.exitCode, "stderr:\n%s", result.stderr)
	assert.Contains(t, result.stdout, "1 matches")
	assert.Contains(t, result.stdout, "    8.0 KB  "+file+"\n")
}

func TestE2E_MissingRootFails(t *testing.T) {
	result := runCLI(t, "--list", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, 1, result.exitCode)
	assert.Contains(t, result.stderr, "Error:")
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()

	cmdArgs := append([]string{"-test.run=^TestCLIHelperProcess$", "--"}, args...)
	cmd := exec.Command(os.Args[0], cmdArgs...)
	// Keep the user's config and cache out of the run.
	cmd.Env = append(os.Environ(),
		helperEnvKey+"=1",
		"XDG_CONFIG_HOME="+t.TempDir(),
		"XDG_CACHE_HOME="+t.TempDir(),
		"HEFT_DEBUG=",
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := cliResult{
		stdout: stdout.String(),
		stderr: stderr.String(),
	}

	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("failed to execute helper process: %v", err)
	}

	result.exitCode = exitErr.ExitCode()
	return result
}

func createScanFixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	mustMkdirAll(t, filepath.Join(root, "keep", "sub"))
	mustMkdirAll(t, filepath.Join(root, "skip-one"))
	mustMkdirAll(t, filepath.Join(root, "skip-two"))

	mustWriteFile(t, filepath.Join(root, "keep", "a.txt"), 2048)
	mustWriteFile(t, filepath.Join(root, "keep", "sub", "big.bin"), 8192)
	mustWriteFile(t, filepath.Join(root, "skip-one", "ignored.log"), 4096)
	mustWriteFile(t, filepath.Join(root, "skip-two", "ignored.log"), 4096)
	mustWriteFile(t, filepath.Join(root, ".hidden.txt"), 3000)
	mustWriteFile(t, filepath.Join(root, "tiny.txt"), 10)

	require.NoError(t, os.Symlink(filepath.Join(root, "keep", "a.txt"), filepath.Join(root, "keep", "link.txt")))

	return root
}

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func mustWriteFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0o644))
}

// entryPaths returns the report's entries relative to root.
func entryPaths(report *model.ScanReport, root string) []string {
	out := make([]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		rel, err := filepath.Rel(root, e.Path)
		if err != nil {
			rel = e.Path
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}
