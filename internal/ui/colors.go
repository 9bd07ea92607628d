package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors, kept to the 16 ANSI slots so the dashboard reads the
// same on light and dark terminals.
const (
	ColorSuccess lipgloss.Color = "2"
	ColorError   lipgloss.Color = "1"
	ColorWarning lipgloss.Color = "3"
	ColorInfo    lipgloss.Color = "6"
)

// Text colors.
const (
	ColorPrimary   lipgloss.Color = "7"
	ColorSecondary lipgloss.Color = "4"
	ColorMuted     lipgloss.Color = "8"
)

// ThresholdColor maps a utilization percentage to green, yellow or red.
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 80:
		return ColorError
	case percent >= 60:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// DisableColors switches every lipgloss renderer to plain ASCII output.
// Used for ui.color=false and when stdout is not a terminal.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
