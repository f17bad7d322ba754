// Package logging builds the debug logger. Logging is off unless HEFT_DEBUG
// is set, since the terminal UI owns stdout and stderr while it runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvVar enables debug logging when non-empty.
const EnvVar = "HEFT_DEBUG"

// FileName is where debug output goes, relative to the working directory.
const FileName = "heft-debug.log"

// New returns a logger configured from the environment and a function that
// releases its output file.
func New() (*slog.Logger, func() error) {
	return NewFromEnv(os.Getenv(EnvVar), FileName, os.Stderr)
}

// NewFromEnv is New with its inputs made explicit. An empty setting gives a
// discarding logger. "json" selects the JSON handler; anything else text.
// If the log file cannot be opened the logger writes to fallback.
func NewFromEnv(setting, path string, fallback io.Writer) (*slog.Logger, func() error) {
	noop := func() error { return nil }
	setting = strings.TrimSpace(setting)
	if setting == "" {
		return slog.New(slog.DiscardHandler), noop
	}

	var (
		out     io.Writer = fallback
		closeFn           = noop
	)
	if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		out, closeFn = f, f.Close
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var h slog.Handler
	if strings.EqualFold(setting, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closeFn
}
