package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ui/style"
	"github.com/sadopc/heft/internal/util"
)

// StatusInfo holds the current state for the status bar.
type StatusInfo struct {
	Visible       int
	VisibleBytes  uint64
	Scope         string
	SelectedCount int
	SelectedBytes uint64
	CanDelete     bool
	Message       string
}

// RenderStatusBar renders the bottom status bar. A non-empty Message
// replaces the counters.
func RenderStatusBar(theme style.Theme, info StatusInfo, width int) string {
	if info.Message != "" {
		line := " " + lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render(info.Message)
		return theme.StatusBarStyle.Width(width).Render(line)
	}

	parts := []string{fmt.Sprintf("%d %s", info.Visible, info.Scope)}
	if info.VisibleBytes > 0 {
		parts = append(parts, util.FormatSize(info.VisibleBytes))
	}
	if info.SelectedCount > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.Error).Bold(true).
			Render(fmt.Sprintf("* %d selected (%s)", info.SelectedCount, util.FormatSize(info.SelectedBytes))))
	}
	left := " " + strings.Join(parts, " | ")

	hints := []binding{{"?", "help"}}
	if info.CanDelete {
		hints = append(hints, binding{"d", "delete"})
	}
	hints = append(hints, binding{"q", "quit"})

	rightParts := make([]string, 0, len(hints))
	for _, h := range hints {
		k := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(h.key)
		d := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" " + h.desc)
		rightParts = append(rightParts, k+d)
	}
	right := strings.Join(rightParts, "  ") + " "

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return theme.StatusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

var sortNames = map[model.SortField]string{
	model.SortBySize:     "Size",
	model.SortByName:     "Name",
	model.SortByKind:     "Kind",
	model.SortByScan:     "Scan",
	model.SortByModified: "Modified",
}

// RenderTabBar renders the view tabs and the active sort.
func RenderTabBar(theme style.Theme, activeView int, sort model.SortConfig, issues, width int) string {
	tabs := []string{"Matches", "Treemap", "File Types", issuesTitle(issues)}

	tabLine := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		label := fmt.Sprintf(" %d %s ", i+1, tab)
		if i == activeView {
			tabLine = append(tabLine, theme.TabActiveStyle.Render(label))
		} else {
			tabLine = append(tabLine, theme.TabInactiveStyle.Render(label))
		}
	}
	left := " " + strings.Join(tabLine, " ")

	dir := "desc"
	if sort.Order == model.SortAsc {
		dir = "asc"
	}
	label := "Sort: " + sortNames[sort.Field]
	if sort.Field != model.SortByScan {
		label += " " + dir
	}
	sortLabel := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(label + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(sortLabel), 1)
	return lipgloss.NewStyle().
		Foreground(theme.TextSecondary).
		Background(theme.BgLight).
		Width(width).
		Render(left + strings.Repeat(" ", gap) + sortLabel)
}
