//go:build windows

package scanner

import (
	"io/fs"
	"syscall"
	"time"
)

// statInfo holds the platform identity of a file.
type statInfo struct {
	inode uint64
	dev   uint64
	ok    bool // true if platform stat was available
}

// getStatInfo on Windows has no inode; Identity falls back to the resolved path.
func getStatInfo(info fs.FileInfo) statInfo {
	return statInfo{}
}

// isSymlinkLoop is always false on Windows, where link loops surface as
// ordinary resolution failures.
func isSymlinkLoop(error) bool { return false }

func birthTime(info fs.FileInfo) time.Time {
	attr, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}
	}
	return time.Unix(0, attr.CreationTime.Nanoseconds())
}
