package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"swell/internal/observ"
)

// printTimings renders the phase report as an aligned table.
func printTimings(w io.Writer, report observ.Report, colored bool) {
	if len(report.Phases) == 0 {
		return
	}
	width := len("total")
	for _, p := range report.Phases {
		width = max(width, len(p.Name))
	}
	name := lipgloss.NewStyle().Width(width + 2)
	ms := lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	note := lipgloss.NewStyle()
	title := lipgloss.NewStyle()
	if colored {
		title = title.Bold(true).Foreground(lipgloss.Color("7"))
		note = note.Foreground(lipgloss.Color("8"))
		ms = ms.Foreground(lipgloss.Color("6"))
	}

	var sb strings.Builder
	sb.WriteString(title.Render("timings") + "\n")
	for _, p := range report.Phases {
		line := "  " + name.Render(p.Name) + ms.Render(fmt.Sprintf("%.2f ms", p.DurationMS))
		if p.Note != "" {
			line += "  " + note.Render(p.Note)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("  " + name.Render("total") + ms.Render(fmt.Sprintf("%.2f ms", report.TotalMS)) + "\n")
	fmt.Fprint(w, sb.String())
}
