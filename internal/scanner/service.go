package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sadopc/heft/internal/model"
)

// Request describes one scan submitted to a Service.
type Request struct {
	Root      string
	Threshold uint64
	Options   Options
	// Progress receives updates only if this request starts the scan;
	// requests that join an in-flight scan get none.
	Progress chan<- Progress
}

// key identifies requests that may share one traversal.
func (r Request) key() string {
	o := r.Options
	return fmt.Sprintf("%s|%d|%t|%t|%d|%t|%s|%d",
		cleanRoot(r.Root), r.Threshold, o.FollowSymlinks, o.IncludeDirectories,
		o.MaxDepth, o.ShowHidden, strings.Join(o.ExcludePatterns, "\x00"), o.Concurrency)
}

// cleanRoot is the in-flight key for root, so "." and its absolute form
// name the same scan.
func cleanRoot(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return filepath.Clean(root)
}

// Result is what a Job resolves with: a report or an error, never both.
type Result struct {
	Report *model.ScanReport
	Err    error
}

// Service runs scans in the background and keeps at most one traversal per
// root in flight. Identical requests coalesce onto the running scan; a
// request with different parameters for a busy root is rejected.
type Service struct {
	scanner Scanner
	logger  *slog.Logger
	group   singleflight.Group

	mu       sync.Mutex
	inflight map[string]*flight
}

// NewService creates a Service. A nil logger discards log output.
func NewService(s Scanner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		scanner:  s,
		logger:   logger,
		inflight: make(map[string]*flight),
	}
}

// Job is a handle on a submitted scan.
type Job struct {
	Request Request
	// Joined is true when the job attached to a scan that was already running.
	Joined bool

	done     chan struct{}
	cancelCh chan struct{}
	cancel   sync.Once
	result   Result
}

// Done is closed once the job's result is available.
func (j *Job) Done() <-chan struct{} { return j.done }

// Result returns the outcome. It is only meaningful after Done is closed.
func (j *Job) Result() Result { return j.result }

// Wait blocks until the job finishes or ctx ends. A ctx ending here does not
// cancel the job; use Cancel for that.
func (j *Job) Wait(ctx context.Context) (*model.ScanReport, error) {
	select {
	case <-j.done:
		return j.result.Report, j.result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel detaches this caller. The underlying traversal stops once no job
// is waiting on it.
func (j *Job) Cancel() {
	j.cancel.Do(func() { close(j.cancelCh) })
}

// Start submits req and returns immediately. Cancelling ctx has the same
// effect as calling Cancel on the returned job.
func (s *Service) Start(ctx context.Context, req Request) (*Job, error) {
	root := cleanRoot(req.Root)
	key := req.key()

	job := &Job{
		Request:  req,
		done:     make(chan struct{}),
		cancelCh: make(chan struct{}),
	}

	// DoChan is called under the lock: while a flight is registered its
	// singleflight call is still pending, so joiners always attach to it.
	s.mu.Lock()
	f, busy := s.inflight[root]
	if busy && f.key != key {
		s.mu.Unlock()
		return nil, &ScanError{Kind: ErrScanInProgress, Path: root}
	}
	if !busy {
		f = s.newFlight(ctx, root, key, req)
		// A finished call for the same key may not have been released yet;
		// make sure this flight starts a fresh traversal.
		s.group.Forget(key)
	}
	f.waiters++
	job.Joined = busy
	ch := s.group.DoChan(key, f.run)
	s.mu.Unlock()

	if busy {
		s.logger.Debug("joined in-flight scan", "root", root)
	}
	go s.await(ctx, job, f, ch)
	return job, nil
}

type flight struct {
	root    string
	key     string
	cancel  context.CancelFunc
	waiters int
	run     func() (any, error)
}

// newFlight registers a traversal for root. The scan context outlives the
// caller's ctx; it ends when the last waiter leaves or the scan returns.
// Callers hold s.mu.
func (s *Service) newFlight(ctx context.Context, root, key string, req Request) *flight {
	scanCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f := &flight{root: root, key: key, cancel: cancel}
	f.run = func() (any, error) {
		defer cancel()
		s.logger.Debug("scan started", "root", root, "threshold", req.Threshold)
		report, err := s.scanner.Scan(scanCtx, req.Root, req.Threshold, req.Options, req.Progress)
		if err != nil {
			s.logger.Debug("scan failed", "root", root, "error", err)
		} else {
			s.logger.Debug("scan finished", "root", root,
				"entries", len(report.Entries), "issues", len(report.Errors),
				"duration_ms", report.DurationMS)
		}

		s.mu.Lock()
		if s.inflight[root] == f {
			delete(s.inflight, root)
		}
		s.mu.Unlock()
		return report, err
	}
	s.inflight[root] = f
	return f
}

func (s *Service) await(ctx context.Context, job *Job, f *flight, ch <-chan singleflight.Result) {
	var res Result
	select {
	case r := <-ch:
		report, _ := r.Val.(*model.ScanReport)
		res = Result{Report: report, Err: r.Err}
	case <-ctx.Done():
		res = Result{Err: &ScanError{Kind: ErrCancelled, Path: job.Request.Root, Err: ctx.Err()}}
	case <-job.cancelCh:
		res = Result{Err: &ScanError{Kind: ErrCancelled, Path: job.Request.Root, Err: context.Canceled}}
	}
	job.result = res
	close(job.done)

	s.mu.Lock()
	f.waiters--
	last := f.waiters == 0
	if last && s.inflight[f.root] == f {
		// An abandoned traversal is winding down; new requests start afresh.
		delete(s.inflight, f.root)
	}
	s.mu.Unlock()
	if last {
		f.cancel()
	}
}

// InFlight reports whether a scan of root is currently running.
func (s *Service) InFlight(root string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[cleanRoot(root)]
	return ok
}
