package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentBlue = lipgloss.Color("#4A76A8")
	lightBlue  = lipgloss.Color("#7FB3E8")
	okGreen    = lipgloss.Color("#4BB34B")
	warnAmber  = lipgloss.Color("#FFA000")
	failRed    = lipgloss.Color("#E64646")
	dimGray    = lipgloss.Color("#8A8A8A")
	faintGray  = lipgloss.Color("#5C5C5C")

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accentBlue).
			Bold(true).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentBlue).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lightBlue).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lightBlue)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	successStyle = lipgloss.NewStyle().
			Foreground(okGreen).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warnAmber)

	errorStyle = lipgloss.NewStyle().
			Foreground(failRed).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	timestampStyle = lipgloss.NewStyle().
			Foreground(faintGray)

	helpStyle = lipgloss.NewStyle().
			Foreground(faintGray).
			PaddingLeft(1)
)

// levelStyle colors a log level tag
func levelStyle(level string) lipgloss.Style {
	switch level {
	case "ERROR":
		return errorStyle
	case "WARN":
		return warningStyle
	case "SUCCESS":
		return successStyle
	default:
		return labelStyle
	}
}
