package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/heft/internal/ui/style"
)

type binding struct{ key, desc string }

var helpSections = []struct {
	name  string
	binds []binding
}{
	{"Navigation", []binding{
		{"j/k", "Move down/up"},
		{"PgUp/PgDn", "Page up/down"},
		{"g/G", "First / last entry"},
	}},
	{"Views", []binding{
		{"1", "Matches"},
		{"2", "Treemap of top-level matches"},
		{"3", "File type breakdown"},
		{"4", "Scan issues"},
		{"t", "Cycle all / top-level / files only"},
	}},
	{"Sorting", []binding{
		{"s", "Sort by size"},
		{"n", "Sort by name"},
		{"K", "Sort by kind"},
		{"o", "Scan order"},
		{"M", "Sort by modified time"},
	}},
	{"Actions", []binding{
		{"Space", "Select/unselect entry"},
		{"A", "Select all visible"},
		{"d", "Delete selected"},
		{"E", "Export report"},
		{"r", "Rescan (local scans)"},
	}},
	{"General", []binding{
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

// RenderHelp renders the help overlay. Delete is omitted when the report
// cannot be acted on locally.
func RenderHelp(theme style.Theme, canDelete bool, width, height int) string {
	boxWidth := max(min(60, width-4), 0)

	lines := []string{theme.ModalTitle.Render("  heft - Keyboard Shortcuts"), ""}
	section := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
	key := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Width(14)
	desc := lipgloss.NewStyle().Foreground(theme.TextSecondary)

	for _, sec := range helpSections {
		lines = append(lines, section.Render("  "+sec.name))
		for _, b := range sec.binds {
			if b.key == "d" && !canDelete {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s %s", key.Render("    "+b.key), desc.Render(b.desc)))
		}
		lines = append(lines, "")
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  Press ? or Esc to close"))

	box := theme.ModalStyle.Width(boxWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
