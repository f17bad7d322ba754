package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ui/style"
	"github.com/sadopc/heft/internal/util"
)

const maxConfirmRows = 10

// RenderConfirmDialog renders the deletion confirmation modal for the
// selected entries.
func RenderConfirmDialog(theme style.Theme, root string, items []model.Entry, width, height int) string {
	boxWidth := max(min(64, width-4), 0)

	lines := []string{
		theme.ModalTitle.Render("  Delete selected items"),
		lipgloss.NewStyle().Foreground(theme.Warning).
			Render(fmt.Sprintf("  %d item(s) will be permanently deleted:", len(items))),
		"",
	}

	var total uint64
	for _, e := range items {
		total = model.SaturatingAdd(total, e.SizeBytes)
	}

	pathStyle := lipgloss.NewStyle().Foreground(theme.Error)
	sizeStyle := lipgloss.NewStyle().Foreground(theme.TextMuted)
	for _, e := range items[:min(len(items), maxConfirmRows)] {
		kind := "  F "
		if e.IsDir() {
			kind = "  D "
		}
		name := truncatePath(RelativePath(root, e.Path), max(boxWidth-20, 1))
		lines = append(lines, pathStyle.Render(kind+name)+sizeStyle.Render("  "+e.SizeDisplay))
	}
	if len(items) > maxConfirmRows {
		lines = append(lines, sizeStyle.Render(fmt.Sprintf("  ... and %d more", len(items)-maxConfirmRows)))
	}

	lines = append(lines,
		"",
		lipgloss.NewStyle().Bold(true).Foreground(theme.TextPrimary).
			Render("  Total: "+util.FormatSize(total)),
		"",
		lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  Press ")+
			lipgloss.NewStyle().Bold(true).Foreground(theme.Success).Render("y")+
			lipgloss.NewStyle().Foreground(theme.TextPrimary).Render(" to confirm, ")+
			lipgloss.NewStyle().Bold(true).Foreground(theme.Error).Render("n/esc")+
			lipgloss.NewStyle().Foreground(theme.TextPrimary).Render(" to cancel"),
	)

	box := theme.ModalStyle.Width(boxWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
