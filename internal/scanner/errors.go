package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/sadopc/heft/internal/model"
)

// Sentinel kinds for fatal scan errors. Match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrCycleDetected    = errors.New("cycle detected")
	ErrCancelled        = errors.New("scan cancelled")
	ErrIO               = errors.New("i/o error")

	// ErrScanInProgress rejects a request whose root is already being
	// scanned with different parameters.
	ErrScanInProgress = errors.New("scan already in progress for this root")
)

// ScanError is the single error a failed scan resolves with.
type ScanError struct {
	Kind error
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *ScanError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classify maps a filesystem error to a scan error kind.
func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCancelled
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	default:
		return ErrIO
	}
}

func newScanError(path string, err error) *ScanError {
	return &ScanError{Kind: classify(err), Path: path, Err: err}
}

// issueFor turns a non-fatal failure below the root into a report issue.
// Vanished entries are I/O errors here: the listing promised them.
func issueFor(path string, err error) model.Issue {
	reason := model.ReasonIOError
	switch {
	case errors.Is(err, fs.ErrPermission):
		reason = model.ReasonPermissionDenied
	case isSymlinkLoop(err):
		reason = model.ReasonCycleDetected
	}
	return model.Issue{Path: path, Reason: reason, Detail: errDetail(err)}
}

// errDetail strips the path an *fs.PathError repeats, keeping the cause.
func errDetail(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Op + ": " + pe.Err.Error()
	}
	return err.Error()
}
