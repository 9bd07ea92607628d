package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
)

// MinRefreshInterval is the shortest allowed refresh interval. The scheduler
// works at one-second resolution.
const MinRefreshInterval = time.Second

// MaxPageSize bounds the table page size.
const MaxPageSize = 200

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but kpi only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest kpi release")
	}

	if err := validateServer(cfg.Server); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'server' section in your .kpi.yaml.")
	}

	if err := validateAuth(cfg.Auth); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'auth' section in your .kpi.yaml.")
	}

	if cfg.Refresh.Interval < MinRefreshInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Refresh interval %s is too short", cfg.Refresh.Interval),
			fmt.Sprintf("Use at least %s, like 30s or 5m.", MinRefreshInterval))
	}

	if err := validateUI(cfg.UI); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'ui' section in your .kpi.yaml.")
	}

	return nil
}

func validateServer(s ServerConfig) error {
	if s.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if err := validateAbsoluteURL(s.BaseURL); err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if s.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout can't be negative")
	}
	return nil
}

func validateAuth(a AuthConfig) error {
	if a.PollInterval <= 0 {
		return fmt.Errorf("auth.poll_interval must be positive")
	}
	if a.LoginTimeout < 0 {
		return fmt.Errorf("auth.login_timeout can't be negative")
	}
	if a.LoginURL != "" {
		if err := validateAbsoluteURL(a.LoginURL); err != nil {
			return fmt.Errorf("auth.login_url: %w", err)
		}
	}
	return nil
}

func validateUI(u UIConfig) error {
	if u.PageSize < 1 || u.PageSize > MaxPageSize {
		return fmt.Errorf("ui.page_size must be between 1 and %d, got %d", MaxPageSize, u.PageSize)
	}
	if u.ToastDuration <= 0 {
		return fmt.Errorf("ui.toast_duration must be positive")
	}
	switch u.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("ui.color must be auto, always, or never, got %q", u.Color)
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must start with http:// or https://", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
