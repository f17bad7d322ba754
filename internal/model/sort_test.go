package model

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNameLess_Natural(t *testing.T) {
	names := []string{"file10", "file2", "file1", "b", "a"}
	sort.Slice(names, func(i, j int) bool { return NameLess(names[i], names[j]) })
	assert.Equal(t, []string{"a", "b", "file1", "file2", "file10"}, names)
}

func TestNameLess_TotalOrder(t *testing.T) {
	// "01" and "1" compare equal naturally; byte order breaks the tie.
	assert.True(t, NameLess("01", "1") != NameLess("1", "01"))
	assert.False(t, NameLess("x", "x"))
}

func entryPaths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestSortEntries_ByModified(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	old := NewEntry("/r/old.bin", true, 10)
	old.Modified = day
	recent := NewEntry("/r/recent.bin", true, 5)
	recent.Modified = day.Add(48 * time.Hour)
	unknown := NewEntry("/r/unknown", false, 50)
	entries := []Entry{old, unknown, recent}

	newest := SortEntries(entries, SortConfig{Field: SortByModified, Order: SortDesc})
	assert.Equal(t, []string{"/r/recent.bin", "/r/old.bin", "/r/unknown"}, entryPaths(newest))

	oldest := SortEntries(entries, SortConfig{Field: SortByModified, Order: SortAsc})
	assert.Equal(t, []string{"/r/unknown", "/r/old.bin", "/r/recent.bin"}, entryPaths(oldest))
}

func TestSortEntries(t *testing.T) {
	entries := []Entry{
		NewEntry("/r/file10.log", true, 50),
		NewEntry("/r/dir", false, 300),
		NewEntry("/r/file2.mp4", true, 200),
	}

	bySize := SortEntries(entries, DefaultSort())
	assert.Equal(t, []string{"/r/dir", "/r/file2.mp4", "/r/file10.log"}, entryPaths(bySize))

	byName := SortEntries(entries, SortConfig{Field: SortByName, Order: SortAsc})
	assert.Equal(t, []string{"/r/dir", "/r/file2.mp4", "/r/file10.log"}, entryPaths(byName))

	asc := SortEntries(entries, SortConfig{Field: SortBySize, Order: SortAsc, DirsFirst: true})
	assert.Equal(t, []string{"/r/dir", "/r/file10.log", "/r/file2.mp4"}, entryPaths(asc))

	scan := SortEntries(entries, SortConfig{Field: SortByScan, Order: SortAsc})
	assert.Equal(t, []string{"/r/file2.mp4", "/r/dir", "/r/file10.log"}, entryPaths(scan))

	// Input is untouched.
	assert.Equal(t, "/r/file10.log", entries[0].Path)
}
