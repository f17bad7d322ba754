package model

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Reason classifies a subtree that could not be fully read.
type Reason string

const (
	ReasonPermissionDenied Reason = "PermissionDenied"
	ReasonCycleDetected    Reason = "CycleDetected"
	ReasonIOError          Reason = "IOError"
	// ReasonDepthLimit marks a directory that was not entered because of MaxDepth.
	ReasonDepthLimit Reason = "DepthLimit"
)

// Issue records a path whose contents contributed nothing to the sizes above it.
type Issue struct {
	Path   string `json:"path" yaml:"path"`
	Reason Reason `json:"reason" yaml:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ReportOptions echoes the traversal policy a report was produced with.
type ReportOptions struct {
	FollowSymlinks     bool `json:"follow_symlinks" yaml:"follow_symlinks"`
	IncludeDirectories bool `json:"include_directories" yaml:"include_directories"`
	MaxDepth           int  `json:"max_depth" yaml:"max_depth"`
}

// ScanReport is the complete result of one scan. Entries are in post-order:
// a directory always follows everything listed beneath it. The root
// directory itself is never an entry; its aggregate is TotalBytes.
type ScanReport struct {
	Root           string        `json:"root" yaml:"root"`
	ThresholdBytes uint64        `json:"threshold_bytes" yaml:"threshold_bytes"`
	Options        ReportOptions `json:"options" yaml:"options"`
	Entries        []Entry       `json:"entries" yaml:"entries"`
	Errors         []Issue       `json:"errors" yaml:"errors"`

	TotalBytes   uint64    `json:"total_bytes" yaml:"total_bytes"`
	FilesScanned int64     `json:"files_scanned" yaml:"files_scanned"`
	DirsScanned  int64     `json:"dirs_scanned" yaml:"dirs_scanned"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	DurationMS   int64     `json:"duration_ms" yaml:"duration_ms"`
}

// Duration returns how long the scan took.
func (r *ScanReport) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// Files returns the matching file entries in report order.
func (r *ScanReport) Files() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.IsFile {
			out = append(out, e)
		}
	}
	return out
}

// Dirs returns the matching directory entries in report order.
func (r *ScanReport) Dirs() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.IsFile {
			out = append(out, e)
		}
	}
	return out
}

// Find looks up an entry by its path.
func (r *ScanReport) Find(path string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// TopLevel returns the entries not nested inside another listed directory.
// Their sizes are disjoint, so they can be summed or laid out side by side.
func (r *ScanReport) TopLevel() []Entry {
	dirs := make(map[string]bool)
	for _, e := range r.Entries {
		if !e.IsFile {
			dirs[e.Path] = true
		}
	}

	var out []Entry
	for _, e := range r.Entries {
		nested := false
		for p := parentPath(e.Path); p != ""; p = parentPath(p) {
			if dirs[p] {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, e)
		}
	}
	return out
}

// ReclaimableBytes is the combined size of the top-level entries.
func (r *ScanReport) ReclaimableBytes() uint64 {
	var total uint64
	for _, e := range r.TopLevel() {
		total = SaturatingAdd(total, e.SizeBytes)
	}
	return total
}

// Validate checks the invariants a report must hold regardless of where it
// came from. Imported reports are validated before use.
func (r *ScanReport) Validate() error {
	if r.Root == "" {
		return fmt.Errorf("report has no root")
	}
	seen := make(map[string]bool, len(r.Entries))
	for i, e := range r.Entries {
		if e.Path == "" {
			return fmt.Errorf("entry %d has an empty path", i)
		}
		if e.Path != r.Root && !IsWithin(r.Root, e.Path) {
			return fmt.Errorf("entry %s is outside root %s", e.Path, r.Root)
		}
		if e.SizeBytes < r.ThresholdBytes {
			return fmt.Errorf("entry %s is below the threshold (%d < %d)", e.Path, e.SizeBytes, r.ThresholdBytes)
		}
		if seen[e.Path] {
			return fmt.Errorf("entry %s is listed twice", e.Path)
		}
		seen[e.Path] = true
	}
	for _, issue := range r.Errors {
		if seen[issue.Path] {
			return fmt.Errorf("error path %s is also listed as an entry", issue.Path)
		}
	}
	return nil
}

// IsWithin reports whether target lies strictly below root.
func IsWithin(root, target string) bool {
	root = strings.TrimRight(root, "/"+string(os.PathSeparator))
	if len(target) <= len(root)+1 || !strings.HasPrefix(target, root) {
		return false
	}
	return isSeparator(target[len(root)])
}

func parentPath(p string) string {
	i := lastSeparator(p)
	if i <= 0 {
		return ""
	}
	return p[:i]
}

func lastSeparator(p string) int {
	return strings.LastIndexAny(p, "/"+string(os.PathSeparator))
}

func isSeparator(c byte) bool {
	return c == '/' || c == os.PathSeparator
}
