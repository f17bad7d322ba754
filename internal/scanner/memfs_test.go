package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"time"
)

// memFS is an in-memory FS for engine tests. Paths are slash-separated and
// absolute. It is built before a scan and read-only during it.
type memFS struct {
	nodes map[string]*memNode
}

type memNode struct {
	mode    fs.FileMode
	size    int64
	target  string
	listErr error
	onList  func()
}

func newMemFS() *memFS {
	m := &memFS{nodes: make(map[string]*memNode)}
	m.nodes["/"] = &memNode{mode: fs.ModeDir | 0o755}
	return m
}

func (m *memFS) dir(p string) *memNode {
	p = path.Clean(p)
	if n, ok := m.nodes[p]; ok {
		return n
	}
	m.dir(path.Dir(p))
	n := &memNode{mode: fs.ModeDir | 0o755}
	m.nodes[p] = n
	return n
}

func (m *memFS) file(p string, size int64) {
	p = path.Clean(p)
	m.dir(path.Dir(p))
	m.nodes[p] = &memNode{mode: 0o644, size: size}
}

func (m *memFS) link(p, target string) {
	p = path.Clean(p)
	m.dir(path.Dir(p))
	m.nodes[p] = &memNode{mode: fs.ModeSymlink | 0o777, target: target}
}

func (m *memFS) lstat(p string) (*memNode, error) {
	n, ok := m.nodes[p]
	if !ok {
		return nil, &fs.PathError{Op: "lstat", Path: p, Err: fs.ErrNotExist}
	}
	return n, nil
}

func (m *memFS) resolve(p string) (string, *memNode, error) {
	for range 40 {
		n, err := m.lstat(p)
		if err != nil {
			return "", nil, err
		}
		if n.mode&fs.ModeSymlink == 0 {
			return p, n, nil
		}
		p = n.target
	}
	return "", nil, &fs.PathError{Op: "stat", Path: p, Err: fmt.Errorf("too many levels of symbolic links")}
}

func (m *memFS) Abs(p string) (string, error) {
	if !path.IsAbs(p) {
		return "", fmt.Errorf("relative path %q", p)
	}
	return path.Clean(p), nil
}

func (m *memFS) Stat(p string) (fs.FileInfo, error) {
	_, n, err := m.resolve(p)
	if err != nil {
		return nil, err
	}
	return memInfo{name: path.Base(p), node: n}, nil
}

func (m *memFS) ReadDir(ctx context.Context, p string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rp, n, err := m.resolve(p)
	if err != nil {
		return nil, err
	}
	if n.onList != nil {
		n.onList()
	}
	if n.listErr != nil {
		return nil, &fs.PathError{Op: "open", Path: p, Err: n.listErr}
	}
	if !n.mode.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fmt.Errorf("not a directory")}
	}

	var out []fs.DirEntry
	for k, child := range m.nodes {
		if k != rp && path.Dir(k) == rp {
			out = append(out, fs.FileInfoToDirEntry(memInfo{name: path.Base(k), node: child}))
		}
	}
	// Reverse byte order, so tests prove the engine imposes its own order.
	sort.Slice(out, func(i, j int) bool { return out[i].Name() > out[j].Name() })
	return out, nil
}

func (m *memFS) Join(dir, name string) string { return path.Join(dir, name) }

func (m *memFS) Identity(p string, _ fs.FileInfo) (FileID, error) {
	rp, _, err := m.resolve(p)
	if err != nil {
		return FileID{}, err
	}
	return FileID{Path: rp}, nil
}

type memInfo struct {
	name string
	node *memNode
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.node.size }
func (i memInfo) Mode() fs.FileMode  { return i.node.mode }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.node.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }
