package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layout splits the terminal between the fixed bars and the content area.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentHeight returns the rows left for the active view.
func (l Layout) ContentHeight() int {
	// header + summary + tab bar + status bar
	return max(l.Height-4, 1)
}

// ContentWidth returns the columns available to the active view.
func (l Layout) ContentWidth() int {
	return max(l.Width, 20)
}

// BarWidth returns the width of the share bar in list rows.
func (l Layout) BarWidth() int {
	return min(max(l.ContentWidth()-l.rowOverhead()-l.minPathWidth(), 5), 20)
}

// PathWidth returns the width left for the entry path.
func (l Layout) PathWidth() int {
	return max(l.ContentWidth()-l.rowOverhead()-l.BarWidth(), 8)
}

func (l Layout) minPathWidth() int { return 24 }

// rowOverhead is the fixed part of a list row:
//
//	"[x] " box(4) + icon(2) + " "(1) + pct(6) + " "(1) + bar + " "(1) + path + " "(1) + size(10)
func (l Layout) rowOverhead() int {
	return 26
}

// FullWidth pads s with spaces to the given visual width. Wider strings are
// returned unchanged.
func FullWidth(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
