package remote

import (
	"context"
	"io/fs"
	"os"
	pathpkg "path"
	"strings"

	"github.com/sadopc/heft/internal/scanner"
)

const defaultRemotePath = "."

// sftpClient is the part of *sftp.Client the scanner needs.
type sftpClient interface {
	ReadDir(string) ([]os.FileInfo, error)
	Stat(string) (os.FileInfo, error)
	RealPath(string) (string, error)
}

// sftpFS adapts an SFTP session to scanner.FS. Paths are POSIX; directory
// identity is the server's canonical path, since SFTP exposes no inodes.
type sftpFS struct {
	client sftpClient
}

var _ scanner.FS = sftpFS{}

func (f sftpFS) Abs(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		p = defaultRemotePath
	}
	p = cleanRemotePath(p)
	if pathpkg.IsAbs(p) {
		return p, nil
	}
	// Relative paths are relative to the login directory.
	resolved, err := f.client.RealPath(p)
	if err != nil {
		return "", &fs.PathError{Op: "realpath", Path: p, Err: err}
	}
	return cleanRemotePath(resolved), nil
}

func (f sftpFS) Stat(p string) (fs.FileInfo, error) {
	info, err := f.client.Stat(p)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: err}
	}
	return info, nil
}

func (f sftpFS) ReadDir(ctx context.Context, p string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := readRemoteDir(ctx, f.client, p)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: err}
	}
	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	return entries, nil
}

func (f sftpFS) Join(dir, name string) string { return pathpkg.Join(dir, name) }

func (f sftpFS) Identity(p string, _ fs.FileInfo) (scanner.FileID, error) {
	resolved, err := f.client.RealPath(p)
	if err != nil {
		return scanner.FileID{}, &fs.PathError{Op: "realpath", Path: p, Err: err}
	}
	return scanner.FileID{Path: cleanRemotePath(resolved)}, nil
}

func readRemoteDir(ctx context.Context, client sftpClient, dirPath string) ([]os.FileInfo, error) {
	if rc, ok := client.(interface {
		ReadDirContext(context.Context, string) ([]os.FileInfo, error)
	}); ok {
		return rc.ReadDirContext(ctx, dirPath)
	}
	return client.ReadDir(dirPath)
}

func cleanRemotePath(p string) string {
	if p == "" {
		return defaultRemotePath
	}
	return pathpkg.Clean(strings.ReplaceAll(p, "\\", "/"))
}
