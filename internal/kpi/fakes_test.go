package kpi

import (
	"context"
	"sync"
	"time"
)

// fakeView records every call a Presenter or LoginGate makes.
type fakeView struct {
	mu            sync.Mutex
	events        []string
	charts        map[Category]ChartSpec
	rows          []MetricRow
	notifications []Notification
	busy          bool
	busyChanges   int
	overlay       bool
	overlayURL    string
	source        Source
	updatedAt     time.Time
	resets        int
}

func newFakeView() *fakeView {
	return &fakeView{charts: map[Category]ChartSpec{}}
}

func (v *fakeView) record(e string) {
	v.events = append(v.events, e)
}

func (v *fakeView) RenderChart(spec ChartSpec) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("chart:" + string(spec.Category))
	v.charts[spec.Category] = spec
}

func (v *fakeView) RenderTable(rows []MetricRow) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("table")
	v.rows = rows
}

func (v *fakeView) Notify(n Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("notify:" + n.Message)
	v.notifications = append(v.notifications, n)
}

func (v *fakeView) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = busy
	v.busyChanges++
}

func (v *fakeView) ShowLoginOverlay(url string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("overlay:show")
	v.overlay = true
	v.overlayURL = url
}

func (v *fakeView) HideLoginOverlay() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("overlay:hide")
	v.overlay = false
}

func (v *fakeView) MarkUpdated(source Source, at time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if source == SourceCache {
		v.record("updated:cache")
	} else {
		v.record("updated:network")
	}
	v.source = source
	v.updatedAt = at
}

func (v *fakeView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("reset")
	v.resets++
	v.charts = map[Category]ChartSpec{}
	v.rows = nil
	v.busy = false
}

func (v *fakeView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

func (v *fakeView) Rows() []MetricRow {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]MetricRow(nil), v.rows...)
}

func (v *fakeView) Chart(c Category) (ChartSpec, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	spec, ok := v.charts[c]
	return spec, ok
}

func (v *fakeView) Notifications() []Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Notification(nil), v.notifications...)
}

func (v *fakeView) Overlay() (bool, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.overlay, v.overlayURL
}

func (v *fakeView) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

func (v *fakeView) Resets() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resets
}

func (v *fakeView) Source() Source {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.source
}

func (v *fakeView) hasNotification(msg string) bool {
	for _, n := range v.Notifications() {
		if n.Message == msg {
			return true
		}
	}
	return false
}

// fakeClient serves scripted responses. When block is set, FetchMetrics
// waits for a value on release (or ctx cancellation) before answering.
type fakeClient struct {
	mu           sync.Mutex
	loginResults []loginResult
	loginCalls   int
	payload      *MetricsPayload
	fetchErr     error
	fetchCalls   int
	logoutErr    error
	logoutCalls  int

	block   bool
	release chan struct{}
	started chan struct{}
}

type loginResult struct {
	status LoginStatus
	err    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		release: make(chan struct{}),
		started: make(chan struct{}, 16),
	}
}

// setLogin scripts CheckLogin answers; the last one repeats.
func (c *fakeClient) setLogin(results ...loginResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginResults = results
}

func (c *fakeClient) setPayload(p *MetricsPayload, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = p
	c.fetchErr = err
}

func (c *fakeClient) CheckLogin(ctx context.Context) (LoginStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginCalls++
	if len(c.loginResults) == 0 {
		return LoginStatus{State: LoggedIn}, nil
	}
	r := c.loginResults[0]
	if len(c.loginResults) > 1 {
		c.loginResults = c.loginResults[1:]
	}
	return r.status, r.err
}

func (c *fakeClient) FetchMetrics(ctx context.Context) (*MetricsPayload, error) {
	c.mu.Lock()
	c.fetchCalls++
	block := c.block
	c.mu.Unlock()

	if block {
		c.started <- struct{}{}
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload, c.fetchErr
}

func (c *fakeClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoutCalls++
	return c.logoutErr
}

func (c *fakeClient) FetchCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchCalls
}

func (c *fakeClient) LoginCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginCalls
}

// countingReloader counts Reload calls.
type countingReloader struct {
	mu    sync.Mutex
	count int
}

func (r *countingReloader) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func (r *countingReloader) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// millis is a cron schedule with sub-second spacing for tests.
type millis time.Duration

func (m millis) Next(t time.Time) time.Time {
	return t.Add(time.Duration(m))
}

func samplePayload() *MetricsPayload {
	return &MetricsPayload{
		CostLabels:          []string{"Jan", "Feb", "Mar"},
		CostData:            []float64{100, 120, 90},
		UtilizationLabels:   []string{"10:00", "11:00"},
		CPUData:             []float64{40, 55},
		MemoryData:          []float64{60, 62},
		DiskData:            []float64{30, 31},
		NetworkLabels:       []string{"10:00", "11:00"},
		NetworkInData:       []float64{5, 7},
		NetworkOutData:      []float64{3, 4},
		ResourceGroups:      []string{"rg-web", "rg-data"},
		ResourceGroupCounts: []float64{4, 2},
		VMSizes:             []string{"B2s", "D4s"},
		VMSizeCounts:        []float64{3, 3},
		StatusLabels:        []string{"running", "stopped"},
		StatusCounts:        []float64{5, 1},
		Metrics: []MetricRow{
			{Name: "vm-web-1", CPU: 40, Memory: 60, Disk: 30, NetworkIn: 5, NetworkOut: 3, Cost: 12.5},
			{Name: "vm-db-1", CPU: 70, Memory: 80, Disk: 55, NetworkIn: 2, NetworkOut: 1, Cost: 40},
		},
		FetchedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
}
