package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	dangerColor  = lipgloss.Color("9")
)

// alertColor picks the title colour from the alert wording.
func alertColor(text string) lipgloss.Color {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "success"), strings.Contains(lower, "copied"):
		return successColor
	case strings.Contains(lower, "fail"), strings.Contains(lower, "error"), strings.HasPrefix(lower, "please"):
		return dangerColor
	default:
		return accentColor
	}
}

// renderAlert draws a borderless three-section modal centred in the
// terminal: title, message and footer.
func renderAlert(message string, width, height int) string {
	modalWidth := 60
	if width < modalWidth+10 {
		modalWidth = max(width-10, 20)
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(alertColor(message)).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Notice")

	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	messageLines := []string{strings.Repeat(" ", modalWidth)}
	for _, line := range strings.Split(message, "\n") {
		messageLines = append(messageLines, messageStyle.Render(line))
	}
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(strings.Join(messageLines, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render("Press Enter to acknowledge")

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
