package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ui/style"
)

// RenderIssues lists the paths the scan could not fully read, starting at
// offset.
func RenderIssues(theme style.Theme, root string, issues []model.Issue, offset, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(issues) == 0 {
		ok := lipgloss.NewStyle().Foreground(theme.Success).Render("  Every directory was read.")
		return padLines([]string{style.FullWidth(ok, width)}, width, height)
	}

	const reasonW = 18
	reason := lipgloss.NewStyle().Foreground(theme.Warning).Width(reasonW)
	detail := lipgloss.NewStyle().Foreground(theme.TextMuted)

	offset = min(max(offset, 0), len(issues)-1)
	end := min(offset+height, len(issues))
	lines := make([]string, 0, height)
	for _, is := range issues[offset:end] {
		p := RelativePath(root, is.Path)
		line := "  " + reason.Render(string(is.Reason)) + p
		if is.Detail != "" {
			line += detail.Render(fmt.Sprintf("  (%s)", is.Detail))
		}
		if lipgloss.Width(line) > width {
			line = "  " + reason.Render(string(is.Reason)) + truncatePath(p, max(width-reasonW-2, 1))
		}
		lines = append(lines, style.FullWidth(line, width))
	}
	return padLines(lines, width, height)
}

// issuesTitle is shown in the tab bar when the report has issues.
func issuesTitle(n int) string {
	if n == 0 {
		return "Issues"
	}
	return fmt.Sprintf("Issues (%d)", n)
}
