package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv_DisabledDiscards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, closeFn := NewFromEnv("", path, nil)
	logger.Debug("hidden")
	require.NoError(t, closeFn())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "disabled logging must not create a file")
}

func TestNewFromEnv_WritesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, closeFn := NewFromEnv("1", path, nil)
	logger.Debug("scan started", "root", "/data")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=\"scan started\"")
	assert.Contains(t, string(data), "root=/data")
}

func TestNewFromEnv_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, closeFn := NewFromEnv("JSON", path, nil)
	logger.Info("done", "entries", 3)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec))
	assert.Equal(t, "done", rec["msg"])
	assert.EqualValues(t, 3, rec["entries"])
}

func TestNewFromEnv_FallsBackWhenFileUnavailable(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing-dir", "debug.log")
	logger, closeFn := NewFromEnv("1", path, &buf)
	logger.Warn("fallback")
	require.NoError(t, closeFn())
	assert.Contains(t, buf.String(), "fallback")
}
