// Package cache keeps the last reports produced for each scanned root, so a
// later session can show them without rescanning.
package cache

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ops"
)

// ErrNoCache is returned when no report is stored for a root.
var ErrNoCache = errors.New("no cached report")

const (
	suffix     = ".json.gz"
	timeLayout = "20060102-150405.000000000"
)

// Store saves and loads gzip'd reports in a directory. Files are named
// <hash of root>_<timestamp>.json.gz, so the newest sorts last.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// DefaultDir returns the per-user cache directory.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "heft")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".heft", "cache")
	}
	return ".heft-cache"
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

func key(root string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(filepath.Clean(root)))
}

// Save stores report under its root.
func (s *Store) Save(report *model.ScanReport) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	name := key(report.Root) + "_" + s.now().UTC().Format(timeLayout) + suffix
	return ops.WriteFileAtomic(filepath.Join(s.dir, name), func(w io.Writer) error {
		gz := gzip.NewWriter(w)
		if err := ops.WriteReport(gz, report, ops.FormatJSON, ""); err != nil {
			return err
		}
		return gz.Close()
	})
}

func (s *Store) files(root string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, key(root)+"_*"+suffix))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (s *Store) latest(root string) (string, error) {
	files, err := s.files(root)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%s: %w", root, ErrNoCache)
	}
	return files[len(files)-1], nil
}

// LoadLatest loads the most recent report saved for root.
func (s *Store) LoadLatest(root string) (*model.ScanReport, error) {
	path, err := s.latest(root)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	report, err := ops.DecodeReport(data, ops.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if filepath.Clean(report.Root) != filepath.Clean(root) {
		// Hash collision; treat as a miss.
		return nil, fmt.Errorf("%s: %w", root, ErrNoCache)
	}
	return report, nil
}

// Timestamp returns when the latest report for root was saved.
func (s *Store) Timestamp(root string) (time.Time, error) {
	path, err := s.latest(root)
	if err != nil {
		return time.Time{}, err
	}

	base := strings.TrimSuffix(filepath.Base(path), suffix)
	_, stamp, ok := strings.Cut(base, "_")
	if !ok {
		return time.Time{}, fmt.Errorf("invalid cache file name %s", filepath.Base(path))
	}
	return time.Parse(timeLayout, stamp)
}

// Prune removes all but the newest keep reports for root.
func (s *Store) Prune(root string, keep int) error {
	files, err := s.files(root)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = 0
	}
	for len(files) > keep {
		if err := os.Remove(files[0]); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("prune: %w", err)
		}
		files = files[1:]
	}
	return nil
}
