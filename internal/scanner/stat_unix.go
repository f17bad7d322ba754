//go:build !windows

package scanner

import (
	"errors"
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// statInfo holds the platform identity of a file.
type statInfo struct {
	inode uint64
	dev   uint64
	ok    bool // true if platform stat was available
}

func getStatInfo(info fs.FileInfo) statInfo {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return statInfo{}
	}
	return statInfo{
		inode: stat.Ino,
		dev:   uint64(stat.Dev),
		ok:    true,
	}
}

// isSymlinkLoop reports whether err comes from resolving a chain of links
// that never reaches a real file, such as A -> B -> A.
func isSymlinkLoop(err error) bool {
	return errors.Is(err, unix.ELOOP)
}
