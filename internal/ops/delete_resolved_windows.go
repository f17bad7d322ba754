//go:build windows

package ops

import (
	"os"
	"path/filepath"
)

// deleteResolvedPath removes baseName inside the already resolved parent.
// RemoveAll does not follow reparse points when it descends.
func deleteResolvedPath(parentPath, baseName string) error {
	target := filepath.Join(parentPath, baseName)
	info, err := os.Lstat(target)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(target)
	}
	return os.Remove(target)
}
