package ops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sadopc/heft/internal/model"
)

// ErrNotInReport rejects a selection that names a path the report does not list.
var ErrNotInReport = errors.New("path is not part of the report")

// Delete removes a file or directory at the given path. Directories are
// removed with their whole subtree. rootPath constrains deletion to strict
// descendants of the scan root, and symlinks are removed, never followed.
func Delete(path string, rootPath string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("cannot resolve root %s: %w", rootPath, err)
	}
	if !within(absRoot, absPath) {
		return fmt.Errorf("refusing to delete %s: outside scan root %s", absPath, absRoot)
	}

	// Resolve the parent so a symlinked ancestor cannot redirect the delete
	// outside the root. The final element itself is never resolved.
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return fmt.Errorf("cannot resolve root %s: %w", absRoot, err)
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(absPath))
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", absPath, err)
	}
	if parent != realRoot && !within(realRoot, parent) {
		return fmt.Errorf("refusing to delete %s: resolves outside scan root %s", absPath, absRoot)
	}

	if _, err := os.Lstat(absPath); err != nil {
		return fmt.Errorf("cannot access %s: %w", absPath, err)
	}
	if err := deleteResolvedPath(parent, filepath.Base(absPath)); err != nil {
		return fmt.Errorf("cannot delete %s: %w", absPath, err)
	}
	return nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// DeleteFailure records a selected path that could not be removed.
type DeleteFailure struct {
	Path string
	Err  error
}

// DeleteResult summarizes a DeleteSelection call.
type DeleteResult struct {
	// Deleted lists removed paths in the order they were removed.
	Deleted []string
	// Covered lists selected paths removed as part of a selected ancestor.
	Covered []string
	Failed  []DeleteFailure
	// FreedBytes is the report size of everything in Deleted.
	FreedBytes uint64
}

// DeleteSelection deletes the selected paths of a report. Every path must be
// an entry of the report and lie strictly inside its root; otherwise nothing
// is deleted. Paths nested under another selected path are not deleted twice.
func DeleteSelection(report *model.ScanReport, selected []string) (DeleteResult, error) {
	var res DeleteResult

	entries := make(map[string]model.Entry, len(selected))
	for _, p := range selected {
		e, ok := report.Find(p)
		if !ok {
			return res, fmt.Errorf("%s: %w", p, ErrNotInReport)
		}
		if !model.IsWithin(report.Root, p) {
			return res, fmt.Errorf("refusing to delete %s: outside scan root %s", p, report.Root)
		}
		entries[p] = e
	}

	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if coveredBy(p, entries) {
			res.Covered = append(res.Covered, p)
			continue
		}
		if err := Delete(p, report.Root); err != nil {
			res.Failed = append(res.Failed, DeleteFailure{Path: p, Err: err})
			continue
		}
		res.Deleted = append(res.Deleted, p)
		res.FreedBytes = model.SaturatingAdd(res.FreedBytes, entries[p].SizeBytes)
	}
	return res, nil
}

func coveredBy(p string, selected map[string]model.Entry) bool {
	for other, e := range selected {
		if other != p && !e.IsFile && model.IsWithin(other, p) {
			return true
		}
	}
	return false
}
