package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
)

// Braille patterns use a 2x4 dot matrix per character, so each cell holds
// two data points with four vertical levels each.
const brailleBase = '\u2800'

// brailleDots maps [row][col] to the bit for that dot.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

const (
	seriesLabelWidth = 16
	barLabelWidth    = 18
	lineChartHeight  = 2
)

// renderChart draws one chart to fit width columns.
func renderChart(spec kpi.ChartSpec, width int) string {
	var b strings.Builder
	title := TitleStyle.Render(spec.Title)
	if spec.Unit != "" {
		title += MutedStyle.Render(" (" + spec.Unit + ")")
	}
	b.WriteString(title)
	b.WriteString("\n")

	if spec.Empty() {
		b.WriteString(MutedStyle.Render("No data"))
		return b.String()
	}

	if spec.Kind == kpi.KindBar {
		b.WriteString(renderBars(spec, width))
	} else {
		b.WriteString(renderLines(spec, width))
	}
	return b.String()
}

func renderLines(spec kpi.ChartSpec, width int) string {
	graphWidth := width - seriesLabelWidth - 24
	if graphWidth < 8 {
		graphWidth = 8
	}

	minVal, maxVal := chartRange(spec)

	var lines []string
	for i, s := range spec.Series {
		color := SeriesColors[i%len(SeriesColors)]
		graph := strings.Split(renderBraille(s.Values, graphWidth, lineChartHeight, minVal, maxVal, color), "\n")

		last := s.Values[len(s.Values)-1]
		name := lipgloss.NewStyle().Foreground(color).Width(seriesLabelWidth).Render(truncate(s.Name, seriesLabelWidth-1))
		stat := ValueStyle.Render(formatValue(last, spec.Unit)) +
			MutedStyle.Render(fmt.Sprintf("  %s–%s", formatValue(minOf(s.Values), spec.Unit), formatValue(maxOf(s.Values), spec.Unit)))

		for row, g := range graph {
			prefix := strings.Repeat(" ", seriesLabelWidth)
			suffix := ""
			if row == len(graph)-1 {
				prefix = name
				suffix = " " + stat
			}
			lines = append(lines, prefix+g+suffix)
		}
	}

	axis := strings.Repeat(" ", seriesLabelWidth) + axisLabels(spec.Labels, graphWidth)
	lines = append(lines, MutedStyle.Render(axis))
	return strings.Join(lines, "\n")
}

func renderBars(spec kpi.ChartSpec, width int) string {
	values := spec.Series[0].Values
	barWidth := width - barLabelWidth - 12
	if barWidth < 4 {
		barWidth = 4
	}

	maxVal := maxOf(values)
	var lines []string
	for i, label := range spec.Labels {
		v := values[i]
		filled := 0
		if maxVal > 0 && v > 0 {
			filled = int(math.Round(v / maxVal * float64(barWidth)))
		}
		if filled > barWidth {
			filled = barWidth
		}
		color := SeriesColors[i%len(SeriesColors)]
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
			MutedStyle.Render(strings.Repeat("░", barWidth-filled))
		name := LabelStyle.Width(barLabelWidth).Render(truncate(label, barLabelWidth-1))
		lines = append(lines, name+bar+" "+ValueStyle.Render(formatValue(v, spec.Unit)))
	}
	return strings.Join(lines, "\n")
}

// renderBraille draws values as a filled area graph, height rows tall.
// Values are scaled between minVal and maxVal and stretched or squeezed to
// fill width cells.
func renderBraille(values []float64, width, height int, minVal, maxVal float64, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	points := resampleData(values, width*2)
	totalDots := height * 4

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	for x, v := range points {
		norm := 0.5
		if maxVal > minVal {
			norm = (v - minVal) / (maxVal - minVal)
		}
		level := int(math.Round(norm * float64(totalDots-1)))
		if level < 0 {
			level = 0
		}
		if level > totalDots-1 {
			level = totalDots - 1
		}

		col, sub := x/2, x%2
		for d := 0; d <= level; d++ {
			gridRow := height - 1 - d/4
			dotRow := 3 - d%4
			grid[gridRow][col] |= 1 << brailleDots[dotRow][sub]
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = style.Render(string(row))
	}
	return strings.Join(lines, "\n")
}

// resampleData resizes data to targetSize points. Downsampling keeps the
// max of each bucket so spikes survive; upsampling interpolates linearly.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	out := make([]float64, targetSize)
	if len(data) == 1 {
		for i := range out {
			out[i] = data[0]
		}
		return out
	}

	if len(data) > targetSize {
		bucket := float64(len(data)) / float64(targetSize)
		for i := range out {
			start := int(float64(i) * bucket)
			end := int(float64(i+1) * bucket)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			out[i] = maxOf(data[start:end])
		}
		return out
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := range out {
		pos := float64(i) * scale
		lo := int(pos)
		if lo >= len(data)-1 {
			out[i] = data[len(data)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = data[lo] + (data[lo+1]-data[lo])*frac
	}
	return out
}

// chartRange returns the shared y range for all series. Percentages use a
// fixed 0-100 scale so charts stay comparable between refreshes.
func chartRange(spec kpi.ChartSpec) (float64, float64) {
	if spec.Unit == "%" {
		return 0, 100
	}
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, s := range spec.Series {
		minVal = math.Min(minVal, minOf(s.Values))
		maxVal = math.Max(maxVal, maxOf(s.Values))
	}
	if minVal > 0 {
		minVal = 0
	}
	return minVal, maxVal
}

// axisLabels spreads the first, middle and last labels across width.
func axisLabels(labels []string, width int) string {
	if len(labels) == 0 || width <= 0 {
		return ""
	}
	first := labels[0]
	last := labels[len(labels)-1]
	if len(labels) == 1 {
		return truncate(first, width)
	}
	gap := width - lipgloss.Width(first) - lipgloss.Width(last)
	if gap < 1 {
		return truncate(first, width)
	}
	return first + strings.Repeat(" ", gap) + last
}

func formatValue(v float64, unit string) string {
	switch unit {
	case "$":
		return fmt.Sprintf("$%.2f", v)
	case "%":
		return fmt.Sprintf("%.1f%%", v)
	case "":
		if v == math.Trunc(v) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.2f %s", v, unit)
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func minOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
