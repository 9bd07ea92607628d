package kpi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Telemetry holds the Prometheus collectors for a dashboard session.
// A nil *Telemetry is valid and records nothing.
type Telemetry struct {
	fetches        *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	loginChecks    *prometheus.CounterVec
	refreshSkipped prometheus.Counter
	cacheOps       *prometheus.CounterVec
	reloads        prometheus.Counter
	busy           prometheus.Gauge
}

// NewTelemetry creates the collectors and registers them with reg.
func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kpi_fetch_total",
			Help: "KPI data fetches by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kpi_fetch_duration_seconds",
			Help:    "Latency of KPI data fetches.",
			Buckets: prometheus.DefBuckets,
		}),
		loginChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kpi_login_checks_total",
			Help: "Login status checks by result.",
		}, []string{"result"}),
		refreshSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kpi_refresh_skipped_total",
			Help: "Refresh cycles skipped because another was in flight.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kpi_cache_operations_total",
			Help: "Session cache operations by op and result.",
		}, []string{"op", "result"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kpi_reloads_total",
			Help: "Dashboard session reloads.",
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kpi_busy",
			Help: "1 while a refresh cycle is in flight.",
		}),
	}

	if reg != nil {
		reg.MustRegister(t.fetches, t.fetchDuration, t.loginChecks,
			t.refreshSkipped, t.cacheOps, t.reloads, t.busy)
	}
	return t
}

// Fetch records the outcome of one FetchMetrics call.
func (t *Telemetry) Fetch(err error, d time.Duration) {
	if t == nil {
		return
	}
	t.fetches.WithLabelValues(resultLabel(err)).Inc()
	t.fetchDuration.Observe(d.Seconds())
}

// LoginCheck records one CheckLogin outcome.
func (t *Telemetry) LoginCheck(status LoginStatus, err error) {
	if t == nil {
		return
	}
	result := status.State.String()
	if err != nil {
		result = "error"
	}
	t.loginChecks.WithLabelValues(result).Inc()
}

// RefreshSkipped counts a cycle dropped by the busy guard.
func (t *Telemetry) RefreshSkipped() {
	if t == nil {
		return
	}
	t.refreshSkipped.Inc()
}

// CacheOp counts a cache read or write.
func (t *Telemetry) CacheOp(op, result string) {
	if t == nil {
		return
	}
	t.cacheOps.WithLabelValues(op, result).Inc()
}

// Reload counts a session reload.
func (t *Telemetry) Reload() {
	if t == nil {
		return
	}
	t.reloads.Inc()
}

// SetBusy mirrors the busy indicator.
func (t *Telemetry) SetBusy(busy bool) {
	if t == nil {
		return
	}
	if busy {
		t.busy.Set(1)
	} else {
		t.busy.Set(0)
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return "error"
}
