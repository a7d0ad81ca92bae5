package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/names/internal/filter"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

// Mark renders s with the given byte ranges wrapped in color.
// Ranges must be sorted and non-overlapping, as filter.Highlighter returns.
func Mark(s string, ranges []filter.Range, color string) string {
	if len(ranges) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, r := range ranges {
		if r.Start < last || r.End > len(s) {
			continue
		}
		b.WriteString(s[last:r.Start])
		b.WriteString(C(color, s[r.Start:r.End]))
		last = r.End
	}
	b.WriteString(s[last:])
	return b.String()
}

// Panel draws a framed box using the current theme.
func Panel(lines []string) {
	t := Current()
	// compute visible width
	maxw := 0
	for _, ln := range lines {
		if w := lipgloss.Width(stripANSI(ln)); w > maxw {
			maxw = w
		}
	}
	pad := func(s string) string {
		if vis := lipgloss.Width(stripANSI(s)); vis < maxw {
			s = s + strings.Repeat(" ", maxw-vis)
		}
		return s
	}
	leftPad := " "
	fmt.Fprintln(stdout, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(stdout, t.V+leftPad+pad(ln)+" "+t.V)
	}
	fmt.Fprintln(stdout, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}
