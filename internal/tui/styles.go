package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/names/internal/filter"
)

// ------- styling (Lip Gloss) -------
var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle      = lipgloss.NewStyle().Faint(true)
	highlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// mark renders s with the matched ranges highlighted and the rest in base.
func mark(s string, ranges []filter.Range, base lipgloss.Style) string {
	if len(ranges) == 0 {
		return base.Render(s)
	}
	var b strings.Builder
	last := 0
	for _, r := range ranges {
		if r.Start < last || r.End > len(s) {
			continue
		}
		if r.Start > last {
			b.WriteString(base.Render(s[last:r.Start]))
		}
		b.WriteString(highlightStyle.Render(s[r.Start:r.End]))
		last = r.End
	}
	if last < len(s) {
		b.WriteString(base.Render(s[last:]))
	}
	return b.String()
}
