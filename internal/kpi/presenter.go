package kpi

import (
	"time"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient message for the user.
type Notification struct {
	Level    Level
	Title    string
	Message  string
	Duration time.Duration
}

// Source says where rendered data came from.
type Source int

const (
	SourceNetwork Source = iota
	SourceCache
)

// ChartRenderer draws one chart, replacing whatever that category showed.
type ChartRenderer interface {
	RenderChart(spec ChartSpec)
}

// TableRenderer replaces the table contents.
type TableRenderer interface {
	RenderTable(rows []MetricRow)
}

// Notifier shows transient messages.
type Notifier interface {
	Notify(n Notification)
}

// BusyIndicator shows whether a refresh is in flight.
type BusyIndicator interface {
	SetBusy(busy bool)
}

// GateView shows and hides the login overlay.
type GateView interface {
	ShowLoginOverlay(loginURL string)
	HideLoginOverlay()
}

// View is the full set of collaborators a session drives.
type View interface {
	ChartRenderer
	TableRenderer
	Notifier
	BusyIndicator
	GateView

	// MarkUpdated records the source and timestamp of the data on screen.
	MarkUpdated(source Source, at time.Time)

	// Reset returns the view to its freshly loaded state.
	Reset()
}

// Presenter turns payloads and errors into View calls.
type Presenter struct {
	view  View
	log   logger.Logger
	tel   *Telemetry
	toast time.Duration
}

// NewPresenter creates a presenter. toast is the default notification
// lifetime.
func NewPresenter(view View, log logger.Logger, tel *Telemetry, toast time.Duration) *Presenter {
	if log == nil {
		log = logger.Noop()
	}
	if toast <= 0 {
		toast = 5 * time.Second
	}
	return &Presenter{view: view, log: log, tel: tel, toast: toast}
}

// Render applies a fresh payload.
func (p *Presenter) Render(payload *MetricsPayload) {
	p.render(payload, SourceNetwork)
}

// Paint applies a cached payload provisionally; the next Render replaces it.
func (p *Presenter) Paint(payload *MetricsPayload) {
	p.render(payload, SourceCache)
}

func (p *Presenter) render(payload *MetricsPayload, source Source) {
	if payload == nil {
		return
	}

	for _, spec := range BuildCharts(payload) {
		if spec.Truncated {
			p.log.Warn("chart %s: label and data lengths differ, showing %d points", spec.Category, len(spec.Labels))
		}
		p.view.RenderChart(spec)
	}

	if payload.HasMetrics() {
		rows := make([]MetricRow, len(payload.Metrics))
		copy(rows, payload.Metrics)
		p.view.RenderTable(rows)
	} else {
		p.log.Warn("payload has no metrics list")
		p.NotifyError(errors.New(errors.ErrDataShape, "No data available",
			"The response had no metrics list"))
	}

	p.view.MarkUpdated(source, payload.FetchedAt)
}

// NotifyError reports a failed fetch. Rendered state is left alone.
func (p *Presenter) NotifyError(err error) {
	if err == nil {
		return
	}
	switch errors.CodeOf(err) {
	case errors.ErrApplication:
		p.Notify(LevelError, "Server error", errors.MessageOf(err))
	case errors.ErrDataShape:
		p.Notify(LevelWarning, "No data", "No data available")
	default:
		p.Notify(LevelError, "Network error", "Failed to load KPI data: "+errors.MessageOf(err))
	}
}

// Notify shows a message with the default lifetime.
func (p *Presenter) Notify(level Level, title, message string) {
	p.view.Notify(Notification{Level: level, Title: title, Message: message, Duration: p.toast})
}

// SetBusy toggles the busy indicator.
func (p *Presenter) SetBusy(busy bool) {
	p.tel.SetBusy(busy)
	p.view.SetBusy(busy)
}

// Reset clears the view for a reload.
func (p *Presenter) Reset() {
	p.view.Reset()
}
