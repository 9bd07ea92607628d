package dashboard

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
)

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge implements kpi.View and forwards calls to the Bubble Tea program
// via Send. This is goroutine-safe.
type Bridge struct {
	mu      sync.RWMutex
	program Sender
}

// NewBridge creates a bridge. The program may be attached later; calls
// made before that are dropped.
func NewBridge(program Sender) *Bridge {
	return &Bridge{program: program}
}

// Attach sets the program that receives messages.
func (b *Bridge) Attach(program Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = program
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// RenderChart forwards a chart to the TUI.
func (b *Bridge) RenderChart(spec kpi.ChartSpec) {
	b.send(chartMsg{spec: spec})
}

// RenderTable forwards table rows to the TUI.
func (b *Bridge) RenderTable(rows []kpi.MetricRow) {
	b.send(tableMsg{rows: rows})
}

// Notify forwards a toast to the TUI.
func (b *Bridge) Notify(n kpi.Notification) {
	b.send(notifyMsg{n: n})
}

// SetBusy forwards the busy state to the TUI.
func (b *Bridge) SetBusy(busy bool) {
	b.send(busyMsg{busy: busy})
}

// ShowLoginOverlay asks the TUI to show the login overlay.
func (b *Bridge) ShowLoginOverlay(loginURL string) {
	b.send(overlayMsg{show: true, loginURL: loginURL})
}

// HideLoginOverlay asks the TUI to hide the login overlay.
func (b *Bridge) HideLoginOverlay() {
	b.send(overlayMsg{show: false})
}

// MarkUpdated forwards the data source and timestamp.
func (b *Bridge) MarkUpdated(source kpi.Source, at time.Time) {
	b.send(updatedMsg{source: source, at: at})
}

// Reset asks the TUI to return to its freshly loaded state.
func (b *Bridge) Reset() {
	b.send(resetMsg{})
}
