package kpi

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

// Session wires the gate, loop, cache and presenter into one dashboard
// lifetime. Start corresponds to loading the dashboard and Reload to
// loading it again with the same cache.
type Session struct {
	ID string

	client    DataClient
	cache     *SessionCache
	gate      *LoginGate
	loop      *RefreshLoop
	presenter *Presenter
	policy    Policy
	log       logger.Logger
	tel       *Telemetry

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// SessionDeps are the collaborators a Session is built from.
type SessionDeps struct {
	Client    DataClient
	Cache     *SessionCache
	Gate      *LoginGate
	Loop      *RefreshLoop
	Presenter *Presenter
	Policy    Policy
	Logger    logger.Logger
	Telemetry *Telemetry
}

// NewSession creates a stopped session and registers it as the gate's
// reloader.
func NewSession(deps SessionDeps) *Session {
	id := uuid.NewString()
	log := deps.Logger
	if log == nil {
		log = logger.Noop()
	}
	s := &Session{
		ID:        id,
		client:    deps.Client,
		cache:     deps.Cache,
		gate:      deps.Gate,
		loop:      deps.Loop,
		presenter: deps.Presenter,
		policy:    deps.Policy,
		log:       log,
		tel:       deps.Telemetry,
	}
	if s.gate != nil {
		s.gate.SetReloader(s)
	}
	return s
}

// Running reports whether the session has been started and not stopped.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start kicks off the load sequence in the background and returns. The
// context only bounds the call itself; the session runs until Stop.
func (s *Session) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.ctx = runCtx
	s.cancel = cancel
	s.mu.Unlock()

	s.log.Info("session %s starting (%s)", s.ID, s.policy)

	if s.policy == Ungated && s.gate != nil {
		go func() { _, _ = s.gate.Check(runCtx) }()
	}
	go s.loop.Start(runCtx)
	return nil
}

// Stop tears the session down. It does not wait for in-flight requests;
// their results are discarded.
func (s *Session) Stop(_ context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.ctx = nil
	s.mu.Unlock()

	s.loop.Stop()
	if s.gate != nil {
		s.gate.StopPolling()
	}
	cancel()
	s.log.Info("session %s stopped", s.ID)
	return nil
}

// Reload stops the session, clears the view, and starts again.
func (s *Session) Reload() {
	s.log.Info("session %s reloading", s.ID)
	s.tel.Reload()
	_ = s.Stop(context.Background())
	s.presenter.Reset()
	_ = s.Start(context.Background())
}

// Refresh runs one cycle now. It blocks for the duration of the fetch.
func (s *Session) Refresh() bool {
	return s.loop.Refresh()
}

// CheckLogin runs a login check and updates the overlay.
func (s *Session) CheckLogin() (LoginStatus, error) {
	ctx := s.runContext()
	return s.gate.Check(ctx)
}

// Login opens the login URL and waits in the background for completion.
func (s *Session) Login() error {
	ctx := s.runContext()
	err := s.gate.Login(ctx)
	if err != nil {
		s.presenter.Notify(LevelWarning, "Login", errors.MessageOf(err))
	}
	return err
}

// Logout signs out on the server, drops the cached payload, and shows the
// login overlay.
func (s *Session) Logout() error {
	ctx := s.runContext()
	if err := s.client.Logout(ctx); err != nil {
		s.log.Warn("logout failed: %v", err)
		s.presenter.Notify(LevelError, "Logout", errors.MessageOf(err))
		return err
	}
	s.cache.Clear()
	s.presenter.Notify(LevelInfo, "Logout", "Logged out")
	_, _ = s.gate.Check(ctx)
	return nil
}

// Gate exposes the session's login gate.
func (s *Session) Gate() *LoginGate {
	return s.gate
}

// runContext returns the running session's context, or Background when
// the session is stopped.
func (s *Session) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}
