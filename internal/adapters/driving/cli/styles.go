package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette for terminal output. Colours are dropped automatically when
// stdout is not a terminal.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6C7086")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

// heading renders a section title underlined to its width.
func heading(title string) string {
	return titleStyle.Render(title) + "\n" + mutedStyle.Render(strings.Repeat("=", lipgloss.Width(title)))
}

// swatch renders a coloured bullet for a code or theme colour.
func swatch(color string) string {
	if color == "" {
		return "●"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

// FormatError renders an error for the terminal.
func FormatError(err error) string {
	return errorStyle.Render("Error:") + " " + err.Error()
}
