package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// FileID identifies a directory for cycle detection. Local filesystems use
// device and inode; backends without inodes use a canonical path.
type FileID struct {
	Dev  uint64
	Ino  uint64
	Path string
}

// FS is the read-only view of a filesystem the engine walks. The local
// implementation is OSFS; internal/remote provides one over SFTP.
type FS interface {
	// Abs returns the absolute, cleaned form of path.
	Abs(path string) (string, error)
	// Stat follows symlinks.
	Stat(path string) (fs.FileInfo, error)
	// ReadDir lists a directory. Entry order is not significant.
	ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error)
	// Join builds a child path.
	Join(dir, name string) string
	// Identity returns the cycle-detection key for a directory reached via
	// path with the given (followed) info.
	Identity(path string, info fs.FileInfo) (FileID, error)
}

// OSFS is the local filesystem.
type OSFS struct{}

func (OSFS) Abs(path string) (string, error) { return filepath.Abs(path) }

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (OSFS) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(path)
}

func (OSFS) Join(dir, name string) string { return filepath.Join(dir, name) }

func (OSFS) Identity(path string, info fs.FileInfo) (FileID, error) {
	if st := getStatInfo(info); st.ok {
		return FileID{Dev: st.dev, Ino: st.inode}, nil
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return FileID{}, err
	}
	return FileID{Path: resolved}, nil
}
