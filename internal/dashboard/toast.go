package dashboard

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
)

const (
	maxToasts            = 4
	defaultToastDuration = 5 * time.Second
	toastWidth           = 48
)

type toast struct {
	id int
	n  kpi.Notification
}

// addToast queues a notification and returns the command that expires it.
func (m *Model) addToast(n kpi.Notification) tea.Cmd {
	m.nextToastID++
	id := m.nextToastID
	m.toasts = append(m.toasts, toast{id: id, n: n})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}

	d := n.Duration
	if d <= 0 {
		d = defaultToastDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) expireToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// renderToasts stacks toasts newest last, right-aligned to width.
func renderToasts(toasts []toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(toasts))
	for _, t := range toasts {
		color := LevelColor(t.n.Level)
		head := lipgloss.NewStyle().Foreground(color).Bold(true).
			Render(LevelSymbol(t.n.Level) + " " + t.n.Title)
		body := ValueStyle.Render(t.n.Message)
		content := body
		if t.n.Title != "" {
			content = head + "\n" + body
		}
		boxes = append(boxes, toastStyle.BorderForeground(color).Width(toastWidth).Render(content))
	}
	stack := strings.Join(boxes, "\n")
	if width <= 0 {
		return stack
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}
