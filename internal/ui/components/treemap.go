package components

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeffwilliams/squarify"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ui/style"
	"github.com/sadopc/heft/internal/util"
)

type rect struct {
	x, y, w, h int
}

// treemapItem adapts entries to squarify.TreeSizer. A nil entry stands for
// the grouped remainder.
type treemapItem struct {
	entry    *model.Entry
	size     float64
	count    int
	children []*treemapItem
}

func (t *treemapItem) Size() float64                  { return t.size }
func (t *treemapItem) NumChildren() int               { return len(t.children) }
func (t *treemapItem) Child(i int) squarify.TreeSizer { return t.children[i] }

// RenderTreemap lays out the report's top-level entries, which never
// overlap, as a squarified treemap.
func RenderTreemap(theme style.Theme, report *model.ScanReport, width, height int) string {
	if report == nil || height <= 0 || width <= 0 {
		return ""
	}

	items := treemapItems(report.TopLevel(), max(width*height/40, 4))
	if len(items) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  (nothing to show)")
	}

	root := &treemapItem{children: items}
	for _, it := range items {
		root.size += it.size
	}
	blocks, metas := squarify.Squarify(root, squarify.Rect{W: float64(width), H: float64(height)},
		squarify.Options{MaxDepth: 1, Sort: true})

	grid := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
		colors[y] = make([]lipgloss.Color, width)
		for x := range colors[y] {
			colors[y][x] = theme.BgDark
		}
	}

	for i, b := range blocks {
		if i < len(metas) && metas[i].Depth != 0 {
			continue
		}
		it, ok := b.TreeSizer.(*treemapItem)
		if !ok {
			continue
		}
		x0, y0 := int(math.Floor(b.X)), int(math.Floor(b.Y))
		r := rect{x0, y0, int(math.Floor(b.X+b.W)) - x0, int(math.Floor(b.Y+b.H)) - y0}
		if r.w <= 0 || r.h <= 0 {
			continue
		}

		color, label := theme.Muted, fmt.Sprintf("%d more (%s)", it.count, util.FormatSize(uint64(it.size)))
		if it.entry != nil {
			label = it.entry.Name() + " " + it.entry.SizeDisplay
			if it.entry.IsDir() {
				color = theme.Accent
				label = it.entry.Name() + "/ " + it.entry.SizeDisplay
			} else {
				color = lipgloss.Color(model.CategoryColor(model.ClassifyFile(it.entry.Path)))
			}
		}
		fillRect(colors, r, color)
		drawBorder(grid, r)
		placeLabel(grid, r, label)
	}

	lines := make([]string, height)
	text := lipgloss.NewStyle().Foreground(theme.TextPrimary)
	for y := range grid {
		var line strings.Builder
		for x, ch := range grid[y] {
			if ch == ' ' {
				line.WriteString(lipgloss.NewStyle().Background(colors[y][x]).Render(" "))
			} else {
				line.WriteString(text.Render(string(ch)))
			}
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// treemapItems keeps the largest entries and folds the rest into one item.
func treemapItems(entries []model.Entry, limit int) []*treemapItem {
	var items []*treemapItem
	for i := range entries {
		if entries[i].SizeBytes == 0 {
			continue
		}
		items = append(items, &treemapItem{entry: &entries[i], size: float64(entries[i].SizeBytes)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].size > items[j].size })

	if len(items) <= limit {
		return items
	}
	rest := &treemapItem{}
	for _, it := range items[limit-1:] {
		rest.size += it.size
		rest.count++
	}
	return append(items[:limit-1], rest)
}

func fillRect(colors [][]lipgloss.Color, r rect, color lipgloss.Color) {
	for y := r.y; y < r.y+r.h && y < len(colors); y++ {
		for x := r.x; x < r.x+r.w && x < len(colors[y]); x++ {
			colors[y][x] = color
		}
	}
}

func drawBorder(grid [][]rune, r rect) {
	if r.w < 2 || r.h < 2 {
		return
	}
	set := func(x, y int, ch rune) {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
			grid[y][x] = ch
		}
	}
	right, bottom := r.x+r.w-1, r.y+r.h-1
	for x := r.x + 1; x < right; x++ {
		set(x, r.y, '─')
		set(x, bottom, '─')
	}
	for y := r.y + 1; y < bottom; y++ {
		set(r.x, y, '│')
		set(right, y, '│')
	}
	set(r.x, r.y, '┌')
	set(right, r.y, '┐')
	set(r.x, bottom, '└')
	set(right, bottom, '┘')
}

func placeLabel(grid [][]rune, r rect, label string) {
	innerW := r.w - 2
	if innerW <= 0 || r.h < 3 || r.y+1 >= len(grid) {
		return
	}
	runes := []rune(util.TruncateString(label, innerW))
	row := grid[r.y+1]
	for i, ch := range runes {
		if x := r.x + 1 + i; x < len(row) {
			row[x] = ch
		}
	}
}
