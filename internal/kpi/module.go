package kpi

import (
	"context"

	"go.uber.org/fx"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

// Module provides a *Session built from *config.Config and starts it with
// the fx lifecycle. The application must supply config, logger, View,
// Opener and prometheus.Registerer.
var Module = fx.Module("kpi",
	fx.Provide(
		NewTelemetry,
		newClient,
		func(c *Client) DataClient { return c },
		newCache,
		newPresenter,
		newGate,
		newLoop,
		newSession,
	),
	fx.Invoke(registerLifecycle),
)

func newClient(cfg *config.Config) *Client {
	return NewClient(cfg.Server.BaseURL, WithTimeout(cfg.Server.RequestTimeout))
}

func newCache(log logger.Logger, tel *Telemetry) *SessionCache {
	return NewSessionCache(logger.With(log, "cache"), tel)
}

func newPresenter(cfg *config.Config, view View, log logger.Logger, tel *Telemetry) *Presenter {
	return NewPresenter(view, logger.With(log, "presenter"), tel, cfg.UI.ToastDuration)
}

func newGate(cfg *config.Config, client DataClient, view View, p *Presenter, opener Opener, log logger.Logger, tel *Telemetry) *LoginGate {
	return NewLoginGate(client, view, p, opener, GateOptions{
		FallbackLoginURL: cfg.Auth.LoginURL,
		PollInterval:     cfg.Auth.PollInterval,
	}, logger.With(log, "gate"), tel)
}

// PolicyFor maps the auth.gated setting to a Policy.
func PolicyFor(cfg *config.Config) Policy {
	if cfg.Auth.Gated {
		return Gated
	}
	return Ungated
}

func newLoop(cfg *config.Config, client DataClient, cache *SessionCache, p *Presenter, gate *LoginGate, log logger.Logger, tel *Telemetry) *RefreshLoop {
	return NewRefreshLoop(client, cache, p, gate, LoopOptions{
		Policy:   PolicyFor(cfg),
		Interval: cfg.Refresh.Interval,
		UseCache: cfg.Refresh.Cache,
	}, logger.With(log, "loop"), tel)
}

func newSession(cfg *config.Config, client DataClient, cache *SessionCache, gate *LoginGate, loop *RefreshLoop, p *Presenter, log logger.Logger, tel *Telemetry) *Session {
	return NewSession(SessionDeps{
		Client:    client,
		Cache:     cache,
		Gate:      gate,
		Loop:      loop,
		Presenter: p,
		Policy:    PolicyFor(cfg),
		Logger:    logger.With(log, "session"),
		Telemetry: tel,
	})
}

func registerLifecycle(lc fx.Lifecycle, s *Session) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return s.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
	})
}
