package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ui/style"
	"github.com/sadopc/heft/internal/util"
)

// ListView renders report entries as a checkbox list.
type ListView struct {
	Theme    style.Theme
	Layout   style.Layout
	Root     string
	Items    []model.Entry
	Total    uint64
	Cursor   int
	Offset   int
	Selected map[string]bool
}

// Render renders the visible window of the list.
func (lv *ListView) Render() string {
	width := lv.Layout.ContentWidth()
	height := lv.Layout.ContentHeight()

	if len(lv.Items) == 0 {
		empty := lipgloss.NewStyle().Foreground(lv.Theme.TextMuted).Render("  (nothing at or above the threshold)")
		return padLines([]string{style.FullWidth(empty, width)}, width, height)
	}

	end := min(lv.Offset+height, len(lv.Items))
	lines := make([]string, 0, height)
	for i := lv.Offset; i < end; i++ {
		lines = append(lines, lv.renderRow(lv.Items[i], i == lv.Cursor, width))
	}
	return padLines(lines, width, height)
}

func (lv *ListView) renderRow(e model.Entry, current bool, width int) string {
	box := lv.Theme.UncheckedBox.Render("[ ]")
	if lv.Selected[e.Path] {
		box = lv.Theme.CheckedBox.Render("[x]")
	}

	// Icons are drawn two cells wide whatever the font says.
	icon := ansi.Truncate(util.Icon(e.Path, e.IsFile), 2, "")
	icon = style.FullWidth(icon, 2)

	pct := util.Percent(e.SizeBytes, lv.Total)
	pctStyled := lv.Theme.PercentText.Render(fmt.Sprintf("%5.1f%%", pct))
	bar := lv.Theme.Bar(lv.Layout.BarWidth(), pct/100)

	pathWidth := lv.Layout.PathWidth()
	name := RelativePath(lv.Root, e.Path)
	if e.IsDir() {
		name += "/"
	}
	name = style.FullWidth(truncatePath(name, pathWidth), pathWidth)
	if e.IsDir() {
		name = lv.Theme.DirName.Render(name)
	} else {
		name = lv.Theme.FileName.Render(name)
	}

	size := lv.Theme.SizeText.Width(10).Render(e.SizeDisplay)

	row := style.FullWidth(fmt.Sprintf("%s %s %s %s %s %s", box, icon, pctStyled, bar, name, size), width)
	if current {
		return lv.Theme.SelectedRow.Width(width).Render(row)
	}
	return row
}

// EnsureVisible adjusts Offset so the cursor row is on screen.
func (lv *ListView) EnsureVisible() {
	height := lv.Layout.ContentHeight()
	if lv.Cursor < lv.Offset {
		lv.Offset = lv.Cursor
	}
	if lv.Cursor >= lv.Offset+height {
		lv.Offset = lv.Cursor - height + 1
	}
	lv.Offset = max(lv.Offset, 0)
}

// RelativePath shows p relative to root. Paths outside root are returned
// unchanged.
func RelativePath(root, p string) string {
	if p == root || !model.IsWithin(root, p) {
		return p
	}
	return strings.TrimLeft(p[len(root):], `/\`)
}

// truncatePath keeps the tail of a path, which names the item, within width
// terminal cells.
func truncatePath(p string, width int) string {
	if ansi.StringWidth(p) <= width {
		return p
	}
	if width <= 3 {
		return ansi.Truncate(p, width, "")
	}
	for ansi.StringWidth(p) > width-3 {
		_, size := utf8.DecodeRuneInString(p)
		p = p[size:]
	}
	return "..." + p
}

func padLines(lines []string, width, height int) string {
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
