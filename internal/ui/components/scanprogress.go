package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/heft/internal/scanner"
	"github.com/sadopc/heft/internal/ui/style"
	"github.com/sadopc/heft/internal/util"
)

// RenderScanProgress renders the scanning modal. spin is the current
// spinner frame.
func RenderScanProgress(theme style.Theme, root, spin string, progress scanner.Progress, width, height int) string {
	boxWidth := max(min(60, width-4), 0)
	inner := max(boxWidth-6, 1)

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).
		Render(fmt.Sprintf("  %s Scanning %s", spin, truncatePath(root, max(inner-12, 1))))

	stat := lipgloss.NewStyle().Foreground(theme.TextSecondary)
	lines := []string{
		title,
		"",
		stat.Render("  Files:  " + util.FormatCount(progress.FilesScanned)),
		stat.Render("  Dirs:   " + util.FormatCount(progress.DirsScanned)),
		stat.Render("  Size:   " + util.FormatSize(progress.BytesFound)),
		stat.Render(fmt.Sprintf("  Speed:  %s items/s", util.FormatCount(int64(progress.ItemsPerSecond())))),
	}
	if progress.Errors > 0 {
		lines = append(lines, theme.ErrorText.Render(fmt.Sprintf("  Issues: %d", progress.Errors)))
	}

	muted := lipgloss.NewStyle().Foreground(theme.TextMuted)
	lines = append(lines, "")
	if progress.CurrentPath != "" {
		lines = append(lines, muted.Render("  "+truncatePath(RelativePath(root, progress.CurrentPath), max(inner-2, 1))))
	}
	lines = append(lines,
		muted.Render(fmt.Sprintf("  Elapsed: %.1fs", progress.Duration.Seconds())),
		muted.Render("  Press q to cancel"))

	box := theme.ModalStyle.Width(boxWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
