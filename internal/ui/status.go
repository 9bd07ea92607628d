package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DividerWidth is the width of Divider lines.
const DividerWidth = 64

// FormatDuration renders a duration as "0.05s" or "1.2s".
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}

// FormatStatus returns "<symbol> <label> <timing>". A zero duration omits
// the timing.
func FormatStatus(symbol string, color lipgloss.Color, label string, took time.Duration) string {
	mark := lipgloss.NewStyle().Foreground(color).Render(symbol)
	if took <= 0 {
		return mark + " " + label
	}
	timing := lipgloss.NewStyle().Foreground(ColorMuted).Render(FormatDuration(took))
	return mark + " " + label + " " + timing
}

// FormatHint renders an indented muted line under a status line.
func FormatHint(text string) string {
	return "  " + lipgloss.NewStyle().Foreground(ColorMuted).Render(text)
}

// Divider returns a muted horizontal rule.
func Divider(width int) string {
	if width <= 0 {
		width = DividerWidth
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("─", width))
}
