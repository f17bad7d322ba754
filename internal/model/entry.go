package model

import (
	"io/fs"
	"time"

	"github.com/sadopc/heft/internal/util"
)

// Entry is one file or directory that met the scan threshold.
type Entry struct {
	Path        string `json:"path" yaml:"path"`
	IsFile      bool   `json:"is_file" yaml:"is_file"`
	SizeBytes   uint64 `json:"size_bytes" yaml:"size_bytes"`
	SizeDisplay string `json:"size_display" yaml:"size_display"`
	// Modified is the last modification time; zero when unknown.
	Modified time.Time `json:"modified,omitzero" yaml:"modified,omitempty"`
	// Created is the birth time, where the filesystem records one.
	Created time.Time `json:"created,omitzero" yaml:"created,omitempty"`
}

// NewEntry builds an Entry; the display string is always derived from size.
func NewEntry(path string, isFile bool, size uint64) Entry {
	return Entry{
		Path:        path,
		IsFile:      isFile,
		SizeBytes:   size,
		SizeDisplay: util.FormatSize(size),
	}
}

// WithTimes returns e with its timestamps taken from info. created is
// the birth time, or zero when the platform has none.
func (e Entry) WithTimes(info fs.FileInfo, created time.Time) Entry {
	if info != nil {
		e.Modified = info.ModTime()
	}
	e.Created = created
	return e
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return !e.IsFile }

// Name returns the last path element.
func (e Entry) Name() string {
	i := lastSeparator(e.Path)
	if i < 0 || i == len(e.Path)-1 {
		return e.Path
	}
	return e.Path[i+1:]
}

// SaturatingAdd adds two sizes, pinning at the maximum instead of wrapping.
func SaturatingAdd(a, b uint64) uint64 {
	if a > ^uint64(0)-b {
		return ^uint64(0)
	}
	return a + b
}
