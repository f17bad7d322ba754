package model

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// NameLess orders sibling names naturally ("file2" before "file10"). Names
// that compare equal naturally fall back to byte order so the result is total.
func NameLess(a, b string) bool {
	if natural.Less(a, b) {
		return true
	}
	if natural.Less(b, a) {
		return false
	}
	return a < b
}

// SortField defines what the list view sorts by.
type SortField int

const (
	SortBySize SortField = iota
	SortByName
	SortByKind
	// SortByScan keeps the report's post-order.
	SortByScan
	SortByModified
)

// SortOrder defines ascending or descending.
type SortOrder int

const (
	SortDesc SortOrder = iota
	SortAsc
)

// SortConfig holds sort preferences.
type SortConfig struct {
	Field SortField
	Order SortOrder
	// DirsFirst keeps directories before files regardless of sort.
	DirsFirst bool
}

// DefaultSort returns the default sort config (size descending, files and
// directories mixed).
func DefaultSort() SortConfig {
	return SortConfig{
		Field: SortBySize,
		Order: SortDesc,
	}
}

// SortEntries returns a sorted copy of entries. The input slice is left in
// report order.
func SortEntries(entries []Entry, cfg SortConfig) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	if cfg.Field == SortByScan && !cfg.DirsFirst {
		if cfg.Order == SortAsc {
			reverse(out)
		}
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		if cfg.DirsFirst && a.IsFile != b.IsFile {
			return !a.IsFile
		}

		// Swapping for descending keeps strict weak ordering: equal items
		// still compare false.
		if cfg.Order == SortDesc {
			a, b = b, a
		}

		switch cfg.Field {
		case SortBySize:
			if a.SizeBytes != b.SizeBytes {
				return a.SizeBytes < b.SizeBytes
			}
			return false
		case SortByName:
			return NameLess(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
		case SortByKind:
			ka, kb := CategoryName(ClassifyFile(a.Name())), CategoryName(ClassifyFile(b.Name()))
			return ka < kb
		case SortByModified:
			return a.Modified.Before(b.Modified)
		default:
			return false
		}
	})
	return out
}

func reverse(entries []Entry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
