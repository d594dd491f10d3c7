package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	dangerColor  = lipgloss.Color("9")

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	labelStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(successColor)
	errorStyle    = lipgloss.NewStyle().Foreground(dangerColor)
	userStyle     = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1)
)

// step renders a numbered step with a done marker.
func step(n, label string, done bool) string {
	mark := faintStyle.Render("○")
	if done {
		mark = successStyle.Render("✓")
	}
	return mark + " " + labelStyle.Render(n+".") + " " + label
}

// footer formats alternating key/description pairs.
func footer(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var out []string
	for i := 0; i+1 < len(parts); i += 2 {
		out = append(out, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(out, "  ")
}

func boxWidth(width int) int {
	if width <= 4 {
		return 60
	}
	return width - 4
}
