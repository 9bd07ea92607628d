package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Eight vertical levels, lowest first.
var sparklineBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws the most recent width points of data scaled
// between their own min and max, in the info color.
func RenderSparkline(data []float64, width int) string {
	blocks := sparkline(data, width)
	if blocks == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(ColorInfo).Render(blocks)
}

// RenderPercentSparkline is RenderSparkline for utilization series. The
// color follows ThresholdColor of the last point.
func RenderPercentSparkline(data []float64, width int) string {
	blocks := sparkline(data, width)
	if blocks == "" {
		return ""
	}
	last := data[len(data)-1]
	return lipgloss.NewStyle().Foreground(ThresholdColor(last)).Render(blocks)
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	levels := len(sparklineBlocks)
	span := hi - lo

	var sb strings.Builder
	for _, v := range data {
		level := levels / 2
		if span > 0 {
			level = int((v - lo) / span * float64(levels-1))
			level = max(0, min(level, levels-1))
		}
		sb.WriteRune(sparklineBlocks[level])
	}
	return sb.String()
}
