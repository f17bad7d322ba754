package scanner

import (
	"context"

	"github.com/sadopc/heft/internal/model"
)

// Options configures the traversal policy. It is passed by value through
// every level of a scan, so differently configured scans never interfere.
type Options struct {
	// FollowSymlinks resolves symbolic links and descends into linked
	// directories. Off by default, which also rules out symlink cycles.
	FollowSymlinks bool
	// IncludeDirectories lists directories whose aggregate size meets the
	// threshold, in addition to the files they contain.
	IncludeDirectories bool
	// MaxDepth stops descent at this many levels below the root (0 = unlimited).
	// A directory that is not entered counts as 0 bytes, so every directory
	// above it reports less than it holds on disk.
	MaxDepth int
	// ShowHidden includes hidden files/directories (starting with .)
	ShowHidden bool
	// ExcludePatterns is a list of entry names to skip entirely
	ExcludePatterns []string
	// Concurrency bounds the number of directories listed in parallel
	// (0 = GOMAXPROCS).
	Concurrency int
	// DisableGC disables garbage collection during scan for speed
	DisableGC bool
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		IncludeDirectories: true,
		ShowHidden:         true,
		ExcludePatterns:    []string{},
	}
}

func (o Options) reportOptions() model.ReportOptions {
	return model.ReportOptions{
		FollowSymlinks:     o.FollowSymlinks,
		IncludeDirectories: o.IncludeDirectories,
		MaxDepth:           o.MaxDepth,
	}
}

// Scanner produces a report of everything under root that is at least
// threshold bytes. Progress updates are sent on the progress channel when it
// is non-nil.
type Scanner interface {
	Scan(ctx context.Context, root string, threshold uint64, opts Options, progress chan<- Progress) (*model.ScanReport, error)
}
