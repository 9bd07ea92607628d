package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
)

const (
	defaultWidth  = 100
	defaultHeight = 40
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	toasts := renderToasts(m.toasts, m.viewWidth())

	if m.overlay {
		height := m.viewHeight()
		if toasts != "" {
			height -= lipgloss.Height(toasts)
		}
		if height < 1 {
			height = 1
		}
		return lipgloss.JoinVertical(lipgloss.Left, m.renderLoginOverlay(height), toasts)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderChartPanel())
	b.WriteString("\n")
	b.WriteString(m.renderTableSection())
	if toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) viewWidth() int {
	if m.width > 0 {
		return m.width
	}
	return defaultWidth
}

func (m Model) viewHeight() int {
	if m.height > 0 {
		return m.height
	}
	return defaultHeight
}

// renderHeader shows the server, freshness and busy state.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("kpi dashboard")

	status := "waiting for data"
	if m.hasData {
		status = "updated " + m.ago(m.updatedAt)
		if m.source == kpi.SourceCache {
			status += " (cached)"
		}
	}

	stats := LabelStyle.Render(fmt.Sprintf(" | %s | %s", m.opts.BaseURL, status))
	busy := ""
	if m.busy {
		busy = " " + m.spinner.View() + LabelStyle.Render(" refreshing")
	}
	return HeaderStyle.Render(title + stats + busy)
}

func (m Model) ago(t time.Time) string {
	if t.IsZero() {
		return "just now"
	}
	secs := int(m.now().Sub(t).Seconds())
	switch {
	case secs <= 0:
		return "just now"
	case secs < 60:
		return fmt.Sprintf("%ds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	default:
		return t.Local().Format("15:04")
	}
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(chartOrder))
	for i, c := range chartOrder {
		name := tabName(c)
		if i == m.chartIndex {
			tabs[i] = ActiveTabStyle.Render(name)
		} else {
			tabs[i] = TabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func tabName(c kpi.Category) string {
	switch c {
	case kpi.CategoryCost:
		return "Cost"
	case kpi.CategoryUtilization:
		return "Utilization"
	case kpi.CategoryNetwork:
		return "Network"
	case kpi.CategoryResourceGroups:
		return "Resource groups"
	case kpi.CategoryVMSizes:
		return "Sizes"
	case kpi.CategoryStatus:
		return "Status"
	default:
		return string(c)
	}
}

func (m Model) renderChartPanel() string {
	width := m.viewWidth() - 4
	spec, ok := m.charts[m.ActiveChart()]
	var content string
	if ok {
		content = renderChart(spec, width)
	} else {
		content = TitleStyle.Render(tabName(m.ActiveChart())) + "\n" + MutedStyle.Render("No data")
	}
	return PanelStyle.Width(width).Render(content)
}

func (m Model) renderTableSection() string {
	filtered := FilterRows(m.rows, m.query)

	summary := fmt.Sprintf("Entities (%d) · sort %s", len(filtered), m.sortColumn)
	if m.sortDesc {
		summary += " ↓"
	} else {
		summary += " ↑"
	}
	if m.query != "" {
		summary += fmt.Sprintf(" · filter %q", m.query)
	}

	lines := []string{LabelStyle.Render(summary)}
	if m.searching {
		lines = append(lines, m.search.View())
	}

	visible := m.VisibleRows()
	if len(visible) == 0 {
		lines = append(lines, MutedStyle.Render("No matching entities"))
	} else {
		lines = append(lines, renderTable(visible, m.sortColumn, m.sortDesc))
	}

	if m.paginator.TotalPages > 1 {
		lines = append(lines, m.paginator.View()+MutedStyle.Render(
			fmt.Sprintf("  page %d/%d", m.paginator.Page+1, m.paginator.TotalPages)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	return FooterStyle.Render("q quit · r refresh · tab chart · s sort · / search · ←/→ page · ? help")
}
