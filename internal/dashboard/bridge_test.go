package dashboard

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
)

// Compile-time checks that both views satisfy kpi.View.
var (
	_ kpi.View = (*Bridge)(nil)
	_ kpi.View = (*PlainView)(nil)
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func TestBridge_ForwardsCalls(t *testing.T) {
	s := &recordingSender{}
	b := NewBridge(s)

	spec := kpi.ChartSpec{Category: kpi.CategoryCost}
	rows := []kpi.MetricRow{{Name: "vm"}}
	n := kpi.Notification{Message: "hi"}
	at := time.Now()

	b.RenderChart(spec)
	b.RenderTable(rows)
	b.Notify(n)
	b.SetBusy(true)
	b.ShowLoginOverlay("https://login.example.com")
	b.HideLoginOverlay()
	b.MarkUpdated(kpi.SourceCache, at)
	b.Reset()

	require.Len(t, s.msgs, 8)
	assert.Equal(t, chartMsg{spec: spec}, s.msgs[0])
	assert.Equal(t, tableMsg{rows: rows}, s.msgs[1])
	assert.Equal(t, notifyMsg{n: n}, s.msgs[2])
	assert.Equal(t, busyMsg{busy: true}, s.msgs[3])
	assert.Equal(t, overlayMsg{show: true, loginURL: "https://login.example.com"}, s.msgs[4])
	assert.Equal(t, overlayMsg{show: false}, s.msgs[5])
	assert.Equal(t, updatedMsg{source: kpi.SourceCache, at: at}, s.msgs[6])
	assert.Equal(t, resetMsg{}, s.msgs[7])
}

func TestBridge_DropsBeforeAttach(t *testing.T) {
	b := NewBridge(nil)
	assert.NotPanics(t, func() { b.SetBusy(true) })

	s := &recordingSender{}
	b.Attach(s)
	b.SetBusy(false)
	assert.Len(t, s.msgs, 1)
}

func TestPlainView(t *testing.T) {
	var buf bytes.Buffer
	v := NewPlainView(&buf)

	v.RenderChart(kpi.ChartSpec{Title: "Cost Trend"})
	v.RenderChart(kpi.ChartSpec{
		Title:  "Entities by Status",
		Kind:   kpi.KindBar,
		Labels: []string{"running", "stopped"},
		Series: []kpi.Series{{Name: "Count", Values: []float64{3, 1}}},
	})
	v.RenderChart(kpi.ChartSpec{
		Title:  "Resource Utilization",
		Unit:   "%",
		Labels: []string{"a", "b"},
		Series: []kpi.Series{{Name: "CPU Usage", Values: []float64{10, 20}}},
	})
	v.RenderTable([]kpi.MetricRow{{Name: "vm-web-1", CPU: 42}})
	v.RenderTable(nil)
	v.Notify(kpi.Notification{Level: kpi.LevelError, Title: "Server error", Message: "Not logged in"})
	v.ShowLoginOverlay("https://login.example.com")
	v.ShowLoginOverlay("")
	v.MarkUpdated(kpi.SourceCache, time.Time{})
	v.Reset()

	out := buf.String()
	for _, want := range []string{
		"Cost Trend: no data",
		"Entities by Status: running=3 stopped=1",
		"Resource Utilization / CPU Usage:",
		"20.0%",
		"vm-web-1",
		"no entities",
		"✗ Server error: Not logged in",
		"login required: https://login.example.com",
		"login required (no login URL known)",
		"--- cached ---",
		"--- reloading ---",
	} {
		assert.True(t, strings.Contains(out, want), "missing %q in:\n%s", want, out)
	}
}
