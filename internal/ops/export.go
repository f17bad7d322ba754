package ops

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sadopc/heft/internal/model"
)

// Format is a report file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFor picks the encoding from a file name: .yaml and .yml are YAML,
// everything else (including "-" for stdout) is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

const progname = "heft"

// document is the on-disk form of a report: a small header followed by the
// report's own fields at the top level.
type document struct {
	Progname         string `json:"progname" yaml:"progname"`
	Progver          string `json:"progver" yaml:"progver"`
	Timestamp        int64  `json:"timestamp" yaml:"timestamp"`
	model.ScanReport `yaml:",inline"`
}

// ExportReport writes report to path in the format its extension implies.
// "-" writes JSON to stdout. File targets are written to a temp file and
// renamed into place, so a partial file is never left behind on error.
func ExportReport(report *model.ScanReport, path string, version string) error {
	if path == "-" {
		return WriteReport(os.Stdout, report, FormatJSON, version)
	}
	return WriteFileAtomic(path, func(w io.Writer) error {
		return WriteReport(w, report, FormatFor(path), version)
	})
}

// WriteReport encodes report to out.
func WriteReport(out io.Writer, report *model.ScanReport, format Format, version string) error {
	if version == "" {
		version = "dev"
	}
	doc := document{
		Progname:   progname,
		Progver:    version,
		Timestamp:  time.Now().Unix(),
		ScanReport: *report,
	}

	bw := bufio.NewWriterSize(out, 64*1024)
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("cannot encode report: %w", err)
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
	default:
		enc := json.NewEncoder(bw)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("cannot encode report: %w", err)
		}
	}
	return bw.Flush()
}

// WriteFileAtomic writes path through fill via a temp file in the same
// directory and renames it into place once fill succeeds.
func WriteFileAtomic(path string, fill func(io.Writer) error) (retErr error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".heft-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := fill(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}
