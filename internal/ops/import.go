package ops

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/sadopc/heft/internal/model"
)

// ImportReport reads a report written by ExportReport. The encoding is
// chosen by extension; "-" reads JSON from stdin. The report is validated
// and its display sizes are re-derived.
func ImportReport(path string) (*model.ScanReport, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}
	return DecodeReport(data, FormatFor(path))
}

// DecodeReport parses an exported report.
func DecodeReport(data []byte, format Format) (*model.ScanReport, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	if doc.Progname != progname {
		return nil, fmt.Errorf("not a %s report (progname %q)", progname, doc.Progname)
	}

	report := doc.ScanReport
	for i, e := range report.Entries {
		report.Entries[i] = model.NewEntry(e.Path, e.IsFile, e.SizeBytes)
		report.Entries[i].Modified, report.Entries[i].Created = e.Modified, e.Created
	}
	if report.Entries == nil {
		report.Entries = []model.Entry{}
	}
	if report.Errors == nil {
		report.Errors = []model.Issue{}
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}
	return &report, nil
}
