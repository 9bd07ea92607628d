package kpi

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

// Opener opens a URL in the user's browser.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

// Open calls f(url).
func (f OpenerFunc) Open(url string) error { return f(url) }

// Reloader restarts the dashboard from scratch.
type Reloader interface {
	Reload()
}

// GateOptions configures a LoginGate.
type GateOptions struct {
	// FallbackLoginURL is used when the server omits login_url.
	FallbackLoginURL string
	// PollInterval is the spacing of login checks while waiting for the
	// user to finish signing in.
	PollInterval time.Duration
}

// LoginGate tracks whether the user is authenticated and drives the login
// overlay. A move from LoggedOut to LoggedIn triggers exactly one reload.
type LoginGate struct {
	client   LoginChecker
	view     GateView
	notifier *Presenter
	opener   Opener
	opts     GateOptions
	log      logger.Logger
	tel      *Telemetry

	mu       sync.Mutex
	reloader Reloader
	state    LoginState
	resolved bool
	// blocked means LoggedIn must reload: the server said LoggedOut, or no
	// check has succeeded yet. A failed check after a good one leaves it.
	blocked    bool
	confirmed  bool
	loginURL   string
	pollCancel context.CancelFunc
}

// NewLoginGate creates a gate in the unresolved state.
func NewLoginGate(client LoginChecker, view GateView, notifier *Presenter, opener Opener, opts GateOptions, log logger.Logger, tel *Telemetry) *LoginGate {
	if log == nil {
		log = logger.Noop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	return &LoginGate{
		client:   client,
		view:     view,
		notifier: notifier,
		opener:   opener,
		opts:     opts,
		log:      log,
		tel:      tel,
		loginURL: opts.FallbackLoginURL,
	}
}

// SetReloader sets what gets restarted after a login completes.
func (g *LoginGate) SetReloader(r Reloader) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reloader = r
}

// State returns the last observed state and whether any check has completed.
func (g *LoginGate) State() (LoginState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.resolved
}

// LoginURL returns the URL the login action will open.
func (g *LoginGate) LoginURL() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loginURL
}

// Polling reports whether a login poll is running.
func (g *LoginGate) Polling() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pollCancel != nil
}

// Check asks the server for the login state and updates the overlay. A
// failed check is treated as LoggedOut and the error is returned.
func (g *LoginGate) Check(ctx context.Context) (LoginStatus, error) {
	status, err := g.client.CheckLogin(ctx)
	g.tel.LoginCheck(status, err)

	if err != nil {
		if ctx.Err() != nil {
			return LoginStatus{State: LoggedOut}, err
		}
		g.log.Warn("login check failed: %v", err)
		g.notifier.Notify(LevelError, "Login", "Failed to check login status")
		url := g.observe(LoginStatus{State: LoggedOut}, false, true)
		return LoginStatus{State: LoggedOut, LoginURL: url}, err
	}

	url := g.observe(status, false, false)
	status.LoginURL = url
	return status, nil
}

// observe records a status, updates the overlay, and fires the reload on
// a LoggedOut to LoggedIn transition. Recovering from a failed check after a
// good one is not a transition. A poll result only counts while the poll is
// still registered. It returns the effective login URL.
func (g *LoginGate) observe(status LoginStatus, fromPoll, failed bool) string {
	g.mu.Lock()
	if fromPoll && g.pollCancel == nil {
		g.mu.Unlock()
		return ""
	}
	transition := status.State == LoggedIn &&
		(fromPoll || g.pollCancel != nil || g.blocked)
	g.state = status.State
	g.resolved = true
	if !failed {
		g.blocked = status.State == LoggedOut
		g.confirmed = true
	} else if !g.confirmed {
		g.blocked = true
	}
	if status.State == LoggedOut && status.LoginURL != "" {
		g.loginURL = status.LoginURL
	}
	url := g.loginURL
	var cancel context.CancelFunc
	if status.State == LoggedIn {
		cancel = g.pollCancel
		g.pollCancel = nil
	}
	reloader := g.reloader
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if status.State == LoggedOut {
		if url == "" {
			g.log.Warn("not logged in and no login URL is known")
		}
		g.view.ShowLoginOverlay(url)
		return url
	}

	g.view.HideLoginOverlay()
	if transition {
		g.log.Info("login completed, reloading dashboard")
		if reloader != nil {
			reloader.Reload()
		}
		g.notifier.Notify(LevelSuccess, "Login", "Successfully logged in")
	}
	return url
}

// Login opens the login URL and starts polling until the user is signed
// in. Only one poll runs at a time; calling Login again reopens the URL.
func (g *LoginGate) Login(ctx context.Context) error {
	g.mu.Lock()
	if g.resolved && g.state == LoggedIn {
		g.mu.Unlock()
		return nil
	}
	url := g.loginURL
	if url == "" {
		g.mu.Unlock()
		return errors.New(errors.ErrAuth, "No login URL is available",
			"Set auth.login_url or make sure the server returns login_url")
	}
	startPoll := g.pollCancel == nil
	var pollCtx context.Context
	if startPoll {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithCancel(ctx)
		g.pollCancel = cancel
	}
	g.mu.Unlock()

	if g.opener != nil {
		if err := g.opener.Open(url); err != nil {
			g.log.Warn("opening login URL failed: %v", err)
			g.notifier.Notify(LevelWarning, "Login", "Couldn't open a browser. Visit "+url+" to sign in")
		}
	}

	if startPoll {
		g.log.Info("waiting for login (polling every %s)", g.opts.PollInterval)
		go g.poll(pollCtx)
	}
	return nil
}

func (g *LoginGate) poll(ctx context.Context) {
	ticker := time.NewTicker(g.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := g.client.CheckLogin(ctx)
		g.tel.LoginCheck(status, err)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			g.log.Debug("login poll check failed: %v", err)
			continue
		}
		if status.State != LoggedIn {
			continue
		}

		g.observe(status, true, false)
		return
	}
}

// StopPolling cancels a running login poll.
func (g *LoginGate) StopPolling() {
	g.mu.Lock()
	cancel := g.pollCancel
	g.pollCancel = nil
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// MarkLoggedOut records a local logout without contacting the server.
func (g *LoginGate) MarkLoggedOut() {
	g.observe(LoginStatus{State: LoggedOut}, false, false)
}
