package dashboard

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

// PlainView implements kpi.View by writing one block of text per update.
// It is used when stdout is not a terminal.
type PlainView struct {
	mu  sync.Mutex
	out io.Writer

	onLogin    func()
	loginAsked bool
}

// NewPlainView creates a view that writes to out.
func NewPlainView(out io.Writer) *PlainView {
	return &PlainView{out: out}
}

// OnLoginRequired sets the action started when the login overlay would be
// shown. It runs once per logged-out spell, since plain output has no keys
// to start it with.
func (v *PlainView) OnLoginRequired(f func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onLogin = f
}

func (v *PlainView) printf(format string, args ...interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

// RenderChart prints the chart's last values with a sparkline per series.
func (v *PlainView) RenderChart(spec kpi.ChartSpec) {
	if spec.Empty() {
		v.printf("%s: no data\n", spec.Title)
		return
	}
	if spec.Kind == kpi.KindBar {
		parts := make([]string, len(spec.Labels))
		for i, l := range spec.Labels {
			parts[i] = fmt.Sprintf("%s=%s", l, formatValue(spec.Series[0].Values[i], spec.Unit))
		}
		v.printf("%s: %s\n", spec.Title, strings.Join(parts, " "))
		return
	}
	spark := ui.RenderSparkline
	if spec.Unit == "%" {
		spark = ui.RenderPercentSparkline
	}
	for _, s := range spec.Series {
		last := s.Values[len(s.Values)-1]
		v.printf("%s / %s: %s %s\n", spec.Title, s.Name,
			spark(s.Values, len(s.Values)), formatValue(last, spec.Unit))
	}
}

// RenderTable prints the metrics table.
func (v *PlainView) RenderTable(rows []kpi.MetricRow) {
	if len(rows) == 0 {
		v.printf("no entities\n")
		return
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = FormatRow(r)
	}
	v.printf("%s\n", ui.RenderSimpleTable(TableColumns(), cells))
}

// Notify prints the notification on one line.
func (v *PlainView) Notify(n kpi.Notification) {
	if n.Title != "" {
		v.printf("%s %s: %s\n", LevelSymbol(n.Level), n.Title, n.Message)
		return
	}
	v.printf("%s %s\n", LevelSymbol(n.Level), n.Message)
}

// SetBusy prints nothing; refreshes are visible through MarkUpdated.
func (v *PlainView) SetBusy(bool) {}

// ShowLoginOverlay prints where to sign in and starts the login action.
func (v *PlainView) ShowLoginOverlay(loginURL string) {
	if loginURL == "" {
		v.printf("login required (no login URL known)\n")
		return
	}
	v.printf("login required: %s\n", loginURL)

	v.mu.Lock()
	start := v.onLogin
	if v.loginAsked {
		start = nil
	}
	if start != nil {
		v.loginAsked = true
	}
	v.mu.Unlock()
	if start != nil {
		go start()
	}
}

// HideLoginOverlay re-arms the login action for the next logged-out spell.
func (v *PlainView) HideLoginOverlay() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loginAsked = false
}

// MarkUpdated prints a separator with the data timestamp.
func (v *PlainView) MarkUpdated(source kpi.Source, at time.Time) {
	label := "fetched"
	if source == kpi.SourceCache {
		label = "cached"
	}
	if at.IsZero() {
		v.printf("--- %s ---\n", label)
		return
	}
	v.printf("--- %s %s ---\n", label, at.Local().Format(time.RFC3339))
}

// Reset prints a reload marker.
func (v *PlainView) Reset() {
	v.printf("--- reloading ---\n")
}
