package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sadopc/heft/internal/model"
)

// ParallelScanner implements Scanner over the local filesystem with
// goroutine-per-directory parallelism.
type ParallelScanner struct{}

// NewParallelScanner creates a new parallel scanner.
func NewParallelScanner() *ParallelScanner {
	return &ParallelScanner{}
}

func (s *ParallelScanner) Scan(ctx context.Context, root string, threshold uint64, opts Options, progress chan<- Progress) (*model.ScanReport, error) {
	return ScanFS(ctx, OSFS{}, root, threshold, opts, progress)
}

// subtree is the owned result of scanning one node. Parents combine their
// children's subtrees after joining them; nothing is shared while walking.
type subtree struct {
	size    uint64
	entries []model.Entry
	issues  []model.Issue
}

// ancestor is an immutable link in the chain from the root to the directory
// being walked. Goroutines share prefixes of the chain freely.
type ancestor struct {
	id     FileID
	parent *ancestor
}

func (a *ancestor) contains(id FileID) bool {
	for ; a != nil; a = a.parent {
		if a.id == id {
			return true
		}
	}
	return false
}

type walker struct {
	fsys      FS
	threshold uint64
	opts      Options
	sem       chan struct{}
	exclude   map[string]bool

	filesScanned atomic.Int64
	dirsScanned  atomic.Int64
	errCount     atomic.Int64
	bytesFound   atomic.Uint64
	current      atomic.Pointer[string]
	cancelled    atomic.Bool
}

// ScanFS scans root on fsys. Entries come out in post-order with siblings in
// natural name order, so the report does not depend on goroutine scheduling.
// The result is either a complete report or a *ScanError.
func ScanFS(ctx context.Context, fsys FS, root string, threshold uint64, opts Options, progress chan<- Progress) (*model.ScanReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ScanError{Kind: ErrCancelled, Path: root, Err: err}
	}

	absPath, err := fsys.Abs(root)
	if err != nil {
		return nil, &ScanError{Kind: ErrIO, Path: root, Err: err}
	}

	// Stat (not Lstat) so a symlinked root like /tmp -> /private/tmp works
	info, err := fsys.Stat(absPath)
	if err != nil {
		return nil, newScanError(absPath, err)
	}

	if opts.DisableGC {
		oldGC := debug.SetGCPercent(-1)
		defer debug.SetGCPercent(oldGC)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	w := &walker{
		fsys:      fsys,
		threshold: threshold,
		opts:      opts,
		sem:       make(chan struct{}, concurrency),
		exclude:   make(map[string]bool, len(opts.ExcludePatterns)),
	}
	for _, p := range opts.ExcludePatterns {
		w.exclude[p] = true
	}

	startTime := time.Now()
	stopProgress := w.reportProgress(progress, startTime)

	var res subtree
	switch {
	case info.IsDir():
		var chain *ancestor
		if opts.FollowSymlinks {
			id, err := fsys.Identity(absPath, info)
			if err != nil {
				stopProgress(false)
				return nil, newScanError(absPath, err)
			}
			chain = &ancestor{id: id}
		}
		res, err = w.walkDir(ctx, absPath, 0, chain)
		if err != nil {
			stopProgress(false)
			if w.cancelled.Load() {
				return nil, &ScanError{Kind: ErrCancelled, Path: absPath, Err: ctx.Err()}
			}
			return nil, newScanError(absPath, err)
		}
	case info.Mode().IsRegular():
		res = w.file(absPath, info)
	}

	if w.cancelled.Load() {
		stopProgress(false)
		return nil, &ScanError{Kind: ErrCancelled, Path: absPath, Err: ctx.Err()}
	}
	stopProgress(true)

	report := &model.ScanReport{
		Root:           absPath,
		ThresholdBytes: threshold,
		Options:        opts.reportOptions(),
		Entries:        res.entries,
		Errors:         res.issues,
		TotalBytes:     res.size,
		FilesScanned:   w.filesScanned.Load(),
		DirsScanned:    w.dirsScanned.Load(),
		StartedAt:      startTime,
		DurationMS:     time.Since(startTime).Milliseconds(),
	}
	if report.Entries == nil {
		report.Entries = []model.Entry{}
	}
	if report.Errors == nil {
		report.Errors = []model.Issue{}
	}
	return report, nil
}

// walkDir lists dirPath and scans its children. The returned subtree holds
// the children's entries but not dirPath itself; the caller decides that.
// A non-nil error means dirPath could not be listed.
func (w *walker) walkDir(ctx context.Context, dirPath string, depth int, chain *ancestor) (subtree, error) {
	if err := ctx.Err(); err != nil {
		w.cancelled.Store(true)
		return subtree{}, err
	}
	w.current.Store(&dirPath)

	list, err := w.fsys.ReadDir(ctx, dirPath)
	if err != nil {
		if ctx.Err() != nil {
			w.cancelled.Store(true)
		}
		return subtree{}, err
	}
	w.dirsScanned.Add(1)

	sort.Slice(list, func(i, j int) bool {
		return model.NameLess(list[i].Name(), list[j].Name())
	})

	// One slot per child keeps emission in sibling order whichever
	// goroutine finishes first.
	slots := make([]subtree, len(list))
	var wg sync.WaitGroup
	for i, de := range list {
		if ctx.Err() != nil {
			w.cancelled.Store(true)
			break
		}

		name := de.Name()
		if !w.opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if w.exclude[name] {
			continue
		}

		childPath := w.fsys.Join(dirPath, name)
		info, ok := w.resolve(de, childPath, &slots[i])
		if !ok {
			continue
		}

		switch {
		case info.Mode().IsRegular():
			slots[i] = w.file(childPath, info)
		case info.IsDir():
			w.spawn(&wg, func() {
				slots[i] = w.dir(ctx, childPath, info, depth+1, chain)
			})
		}
		// Devices, sockets and pipes have no meaningful size.
	}
	wg.Wait()

	var out subtree
	for _, s := range slots {
		out.size = model.SaturatingAdd(out.size, s.size)
		out.entries = append(out.entries, s.entries...)
		out.issues = append(out.issues, s.issues...)
	}
	return out, nil
}

// spawn runs fn on a new goroutine if a slot is free. If all workers are busy
// it runs fn in the current goroutine instead of queueing behind a parent
// that is itself waiting.
func (w *walker) spawn(wg *sync.WaitGroup, fn func()) {
	select {
	case w.sem <- struct{}{}:
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-w.sem }()
			fn()
		}()
	default:
		fn()
	}
}

// resolve returns the info an entry is sized by. Symlinks are followed only
// when enabled and are otherwise skipped. Failures are recorded in slot.
func (w *walker) resolve(de fs.DirEntry, path string, slot *subtree) (fs.FileInfo, bool) {
	var (
		info fs.FileInfo
		err  error
	)
	if de.Type()&fs.ModeSymlink != 0 {
		if !w.opts.FollowSymlinks {
			return nil, false
		}
		info, err = w.fsys.Stat(path)
	} else {
		info, err = de.Info()
	}
	if err != nil {
		*slot = w.failed(path, err)
		return nil, false
	}
	return info, true
}

func (w *walker) dir(ctx context.Context, path string, info fs.FileInfo, depth int, chain *ancestor) subtree {
	if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
		return w.skipped(path, model.ReasonDepthLimit, fmt.Sprintf("max depth %d reached", w.opts.MaxDepth))
	}

	if w.opts.FollowSymlinks {
		id, err := w.fsys.Identity(path, info)
		if err != nil {
			return w.failed(path, err)
		}
		if chain.contains(id) {
			return w.skipped(path, model.ReasonCycleDetected, "directory is its own ancestor")
		}
		chain = &ancestor{id: id, parent: chain}
	}

	res, err := w.walkDir(ctx, path, depth, chain)
	if err != nil {
		if w.cancelled.Load() {
			return subtree{}
		}
		return w.failed(path, err)
	}

	if w.opts.IncludeDirectories && res.size >= w.threshold {
		res.entries = append(res.entries, model.NewEntry(path, false, res.size).WithTimes(info, birthTime(info)))
	}
	return res
}

func (w *walker) file(path string, info fs.FileInfo) subtree {
	size := uint64(max(info.Size(), 0))
	w.filesScanned.Add(1)
	w.bytesFound.Add(size)

	res := subtree{size: size}
	if size >= w.threshold {
		res.entries = []model.Entry{model.NewEntry(path, true, size).WithTimes(info, birthTime(info))}
	}
	return res
}

func (w *walker) failed(path string, err error) subtree {
	w.errCount.Add(1)
	return subtree{issues: []model.Issue{issueFor(path, err)}}
}

func (w *walker) skipped(path string, reason model.Reason, detail string) subtree {
	w.errCount.Add(1)
	return subtree{issues: []model.Issue{{Path: path, Reason: reason, Detail: detail}}}
}

// reportProgress starts the progress ticker and returns the function that
// stops it. Sends never block the scan; a full channel drops the update.
func (w *walker) reportProgress(progress chan<- Progress, startTime time.Time) func(done bool) {
	if progress == nil {
		return func(bool) {}
	}

	snapshot := func(done bool) Progress {
		p := Progress{
			FilesScanned: w.filesScanned.Load(),
			DirsScanned:  w.dirsScanned.Load(),
			BytesFound:   w.bytesFound.Load(),
			Errors:       w.errCount.Load(),
			Done:         done,
			StartTime:    startTime,
			Duration:     time.Since(startTime),
		}
		if cur := w.current.Load(); cur != nil {
			p.CurrentPath = *cur
		}
		return p
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case progress <- snapshot(false):
				default:
				}
			case <-stop:
				return
			}
		}
	}()

	return func(done bool) {
		close(stop)
		wg.Wait()
		if !done {
			return
		}
		select {
		case progress <- snapshot(true):
		default:
		}
	}
}
