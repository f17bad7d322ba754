package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ui/style"
	"github.com/sadopc/heft/internal/util"
)

// RenderFileTypes renders the per-category breakdown of the matching files.
func RenderFileTypes(theme style.Theme, stats []model.CategoryStat, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	var total uint64
	for _, s := range stats {
		total = model.SaturatingAdd(total, s.Bytes)
	}
	if total == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  (no matching files)")
	}

	const catW, countW, sizeW = 14, 10, 12
	barW := min(max(width-catW-countW-sizeW-14, 10), 30)

	hdr := lipgloss.NewStyle().Bold(true).Foreground(theme.TextPrimary)
	sep := lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  " + strings.Repeat("-", max(width-4, 0)))
	lines := []string{
		hdr.Render(fmt.Sprintf("  %-*s %*s %*s  %s", catW, "Category", countW, "Files", sizeW, "Size", "Share")),
		sep,
	}

	cell := lipgloss.NewStyle().Foreground(theme.TextSecondary).Align(lipgloss.Right)
	for _, s := range stats {
		pct := util.Percent(s.Bytes, total)
		color := lipgloss.Color(model.CategoryColor(s.Category))
		lines = append(lines, fmt.Sprintf("  %s %s %s  %s%s",
			lipgloss.NewStyle().Foreground(color).Bold(true).Width(catW).Render(model.CategoryName(s.Category)),
			cell.Width(countW).Render(util.FormatCount(int64(s.Files))),
			cell.Width(sizeW).Render(util.FormatSize(s.Bytes)),
			categoryBar(barW, pct/100, color, theme.TextMuted),
			lipgloss.NewStyle().Foreground(theme.TextMuted).Render(fmt.Sprintf(" %5.1f%%", pct)),
		))
	}
	lines = append(lines, sep,
		hdr.Render(fmt.Sprintf("  %-*s %*s %*s", catW, "Total", countW, "", sizeW, util.FormatSize(total))))

	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	bg := lipgloss.NewStyle().Background(theme.BgDark).Width(width)
	for i := range lines {
		lines[i] = bg.Render(lines[i])
	}
	return strings.Join(lines, "\n")
}

func categoryBar(width int, ratio float64, color, dim lipgloss.Color) string {
	filled := min(int(ratio*float64(width)), width)
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("=", filled)) +
		lipgloss.NewStyle().Foreground(dim).Render(strings.Repeat("-", width-filled))
}
