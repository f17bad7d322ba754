package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ui/style"
	"github.com/sadopc/heft/internal/util"
	"github.com/sadopc/heft/internal/volume"
)

// RenderHeader renders the top bar: program name, scan root and either the
// volume's free space or the scanned total.
func RenderHeader(theme style.Theme, report *model.ScanReport, vol *volume.Info, width int) string {
	if report == nil || width < 10 {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(" heft")

	stats := util.FormatSize(report.TotalBytes) + " scanned "
	if vol != nil && vol.Total > 0 {
		stats = vol.String() + " "
	}
	statsStyled := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(stats)

	titleW := lipgloss.Width(title)
	statsW := lipgloss.Width(statsStyled)

	root := ""
	if pathMaxW := width - titleW - statsW - 3; pathMaxW > 5 {
		root = truncatePath(report.Root, pathMaxW)
	}
	rootStyled := lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  " + root)

	gap := max(width-titleW-lipgloss.Width(rootStyled)-statsW, 1)
	line := title + rootStyled + strings.Repeat(" ", gap) + statsStyled
	return theme.HeaderStyle.Width(width).Render(line)
}

// RenderSummary renders the line under the header describing what the
// report holds.
func RenderSummary(theme style.Theme, report *model.ScanReport, imported bool, width int) string {
	if report == nil {
		return ""
	}

	parts := []string{
		"≥ " + util.FormatSize(report.ThresholdBytes),
		fmt.Sprintf("%d matches", len(report.Entries)),
		util.FormatSize(report.ReclaimableBytes()) + " reclaimable",
	}
	if n := len(report.Errors); n > 0 {
		parts = append(parts, theme.ErrorText.Render(fmt.Sprintf("%d issues", n)))
	}
	parts = append(parts, fmt.Sprintf("%s files, %s dirs in %s",
		util.FormatCount(report.FilesScanned),
		util.FormatCount(report.DirsScanned),
		report.Duration().Round(time.Millisecond)))
	if imported {
		parts = append(parts, "imported")
	}

	line := " " + strings.Join(parts, "  ·  ")
	if lipgloss.Width(line) > width {
		line = " " + strings.Join(parts[:3], "  ·  ")
	}
	return theme.SummaryStyle.Width(width).Render(line)
}
