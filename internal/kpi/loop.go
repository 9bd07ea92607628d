package kpi

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

// Policy decides whether data loading waits on the login gate.
type Policy int

const (
	// Ungated loads data immediately; the login check runs independently.
	Ungated Policy = iota
	// Gated loads nothing until the user is logged in and re-checks the
	// login state on every timer cycle.
	Gated
)

// String returns the policy name used in logs.
func (p Policy) String() string {
	if p == Gated {
		return "gated"
	}
	return "ungated"
}

// LoopOptions configures a RefreshLoop.
type LoopOptions struct {
	Policy   Policy
	Interval time.Duration
	// UseCache paints the cached payload before the first fetch.
	UseCache bool
	// Schedule overrides the timer built from Interval.
	Schedule cron.Schedule
}

// RefreshLoop fetches on load and on a fixed timer. At most one cycle is in
// flight per generation; a cycle that finds the slot taken is skipped.
type RefreshLoop struct {
	fetcher   MetricsFetcher
	cache     *SessionCache
	presenter *Presenter
	gate      *LoginGate
	opts      LoopOptions
	log       logger.Logger
	tel       *Telemetry

	mu          sync.Mutex
	cron        *cron.Cron
	ctx         context.Context
	cancel      context.CancelFunc
	generation  uint64
	inflight    bool
	inflightGen uint64

	// busyMu orders busy indicator updates against slot changes.
	busyMu sync.Mutex
}

// NewRefreshLoop creates a stopped loop.
func NewRefreshLoop(fetcher MetricsFetcher, cache *SessionCache, presenter *Presenter, gate *LoginGate, opts LoopOptions, log logger.Logger, tel *Telemetry) *RefreshLoop {
	if log == nil {
		log = logger.Noop()
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	return &RefreshLoop{
		fetcher:   fetcher,
		cache:     cache,
		presenter: presenter,
		gate:      gate,
		opts:      opts,
		log:       log,
		tel:       tel,
	}
}

// Generation returns the current generation. It changes on every Start and
// Stop; results from an older generation are discarded.
func (l *RefreshLoop) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// Scheduled reports whether the periodic timer is armed.
func (l *RefreshLoop) Scheduled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cron != nil
}

// Start runs the load sequence and blocks until the first cycle finishes.
// Gated: check login, and stop there if logged out. Then paint the cache,
// run one cycle, and arm the timer. Calling Start again replaces the
// previous timer.
func (l *RefreshLoop) Start(ctx context.Context) {
	l.Stop()

	l.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	l.ctx = runCtx
	l.cancel = cancel
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	l.log.Debug("refresh loop starting (policy=%s, interval=%s, generation=%d)", l.opts.Policy, l.opts.Interval, gen)

	if l.opts.Policy == Gated && l.gate != nil {
		status, _ := l.gate.Check(runCtx)
		if status.State != LoggedIn {
			l.log.Info("not logged in, data loading deferred until login")
			return
		}
	}

	if l.opts.UseCache && l.cache != nil && l.current(gen) {
		if p, ok := l.cache.Read(); ok {
			l.log.Debug("painting cached payload")
			l.presenter.Paint(p)
		}
	}

	l.cycle(runCtx, gen)
	l.schedule(gen)
}

// Refresh runs one cycle now, honoring the gate in gated mode. It returns
// false if the loop isn't running, the gate is closed, or a cycle was
// already in flight.
func (l *RefreshLoop) Refresh() bool {
	l.mu.Lock()
	ctx, gen := l.ctx, l.generation
	l.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return false
	}
	return l.gatedCycle(ctx, gen)
}

// Stop disarms the timer and invalidates any in-flight cycle.
func (l *RefreshLoop) Stop() {
	l.mu.Lock()
	c, cancel := l.cron, l.cancel
	l.cron = nil
	l.cancel = nil
	l.ctx = nil
	l.generation++
	l.mu.Unlock()

	if c != nil {
		c.Stop()
	}
	if cancel != nil {
		cancel()
	}
}

func (l *RefreshLoop) schedule(gen uint64) {
	sched := l.opts.Schedule
	if sched == nil {
		sched = cron.Every(l.opts.Interval)
	}

	cl := cronLogger{log: l.log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))
	c.Schedule(sched, cron.FuncJob(func() {
		l.mu.Lock()
		ctx := l.ctx
		l.mu.Unlock()
		if ctx == nil || !l.current(gen) {
			return
		}
		l.gatedCycle(ctx, gen)
	}))

	l.mu.Lock()
	if l.generation != gen {
		l.mu.Unlock()
		return
	}
	l.cron = c
	l.mu.Unlock()
	c.Start()
}

func (l *RefreshLoop) gatedCycle(ctx context.Context, gen uint64) bool {
	if l.opts.Policy == Gated && l.gate != nil {
		status, _ := l.gate.Check(ctx)
		if status.State != LoggedIn {
			l.log.Debug("skipping refresh: not logged in")
			return false
		}
	}
	return l.cycle(ctx, gen)
}

// cycle performs one guarded fetch. It reports whether a fetch was made.
func (l *RefreshLoop) cycle(ctx context.Context, gen uint64) bool {
	l.busyMu.Lock()
	if !l.acquire(gen) {
		l.busyMu.Unlock()
		l.log.Debug("skipping refresh: previous cycle still in flight")
		l.tel.RefreshSkipped()
		return false
	}
	l.presenter.SetBusy(true)
	l.busyMu.Unlock()

	start := time.Now()
	payload, err := l.fetcher.FetchMetrics(ctx)
	l.tel.Fetch(err, time.Since(start))

	if !l.release(gen) {
		l.log.Debug("discarding result from stale cycle (generation %d)", gen)
		l.settleBusy()
		return true
	}
	defer l.settleBusy()

	if err != nil {
		l.log.Warn("fetch failed: %v", err)
		l.presenter.NotifyError(err)
		return true
	}

	if l.cache != nil {
		l.cache.Write(payload)
	}
	l.presenter.Render(payload)
	return true
}

func (l *RefreshLoop) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation == gen
}

func (l *RefreshLoop) acquire(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation != gen {
		return false
	}
	if l.inflight && l.inflightGen == gen {
		return false
	}
	l.inflight = true
	l.inflightGen = gen
	return true
}

// settleBusy clears the busy indicator unless another cycle holds the slot.
func (l *RefreshLoop) settleBusy() {
	l.busyMu.Lock()
	defer l.busyMu.Unlock()
	l.mu.Lock()
	idle := !l.inflight
	l.mu.Unlock()
	if idle {
		l.presenter.SetBusy(false)
	}
}

// release frees the slot and reports whether gen is still current.
func (l *RefreshLoop) release(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inflight && l.inflightGen == gen {
		l.inflight = false
	}
	return l.generation == gen
}

// cronLogger routes cron's logging through our logger.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
