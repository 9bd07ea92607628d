package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")
	ColorGraph     = lipgloss.Color("#00FFFF")
)

// SeriesColors are assigned to chart series in order.
var SeriesColors = []lipgloss.Color{
	ColorGraph,
	ColorAccent,
	ColorHealthy,
	ColorWarning,
	ColorAccentDim,
}

// Thresholds for utilization coloring
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorAccentDim).
			Bold(true).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	overlayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 3)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// MetricColor returns the color for a percentage-based value.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// LevelColor maps a notification level to a border color.
func LevelColor(level kpi.Level) lipgloss.Color {
	switch level {
	case kpi.LevelSuccess:
		return ColorHealthy
	case kpi.LevelWarning:
		return ColorWarning
	case kpi.LevelError:
		return ColorCritical
	default:
		return ColorGraph
	}
}

// LevelSymbol maps a notification level to a leading glyph.
func LevelSymbol(level kpi.Level) string {
	switch level {
	case kpi.LevelSuccess:
		return "✓"
	case kpi.LevelWarning:
		return "!"
	case kpi.LevelError:
		return "✗"
	default:
		return "i"
	}
}
