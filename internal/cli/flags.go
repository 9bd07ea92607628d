package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/errors"
)

// ServerFlags are shared by every command that talks to the KPI API.
type ServerFlags struct {
	BaseURL string
	Timeout string
}

// AddServerFlags registers --base-url and --request-timeout on a command.
func AddServerFlags(cmd *cobra.Command, flags *ServerFlags) {
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", "", "KPI API base URL (overrides server.base_url)")
	cmd.Flags().StringVar(&flags.Timeout, "request-timeout", "", "per-request timeout (e.g., 10s, 0 to disable)")
}

// Apply copies set flags over cfg.
func (f ServerFlags) Apply(cfg *config.Config) error {
	if f.BaseURL != "" {
		cfg.Server.BaseURL = f.BaseURL
	}
	if f.Timeout != "" {
		d, err := ParseDuration("request-timeout", f.Timeout, 0)
		if err != nil {
			return err
		}
		cfg.Server.RequestTimeout = d
	}
	return nil
}

// DashboardFlags configure the dashboard on both the root and dashboard
// commands.
type DashboardFlags struct {
	ServerFlags
	Interval    string
	Gated       bool
	NoCache     bool
	MetricsAddr string
	Plain       bool
}

// AddDashboardFlags registers dashboard flags on a command.
func AddDashboardFlags(cmd *cobra.Command, flags *DashboardFlags) {
	AddServerFlags(cmd, &flags.ServerFlags)
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "refresh interval (e.g., 30s, 5m)")
	cmd.Flags().BoolVar(&flags.Gated, "gated", false, "require login before fetching data")
	cmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "skip the provisional paint from the session cache")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g., :9464)")
	cmd.Flags().BoolVar(&flags.Plain, "plain", false, "print line updates instead of the full-screen dashboard")
}

// Apply copies set flags over cfg.
func (f DashboardFlags) Apply(cfg *config.Config) error {
	if err := f.ServerFlags.Apply(cfg); err != nil {
		return err
	}
	if f.Interval != "" {
		d, err := ParseDuration("interval", f.Interval, config.MinRefreshInterval)
		if err != nil {
			return err
		}
		cfg.Refresh.Interval = d
	}
	if f.Gated {
		cfg.Auth.Gated = true
	}
	if f.NoCache {
		cfg.Refresh.Cache = false
	}
	return nil
}

// ParseDuration parses a duration flag, rejecting values below floor.
func ParseDuration(name, value string, floor time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", value, name),
			"Try something like 30s, 5m, or 500ms.")
	}
	if d < floor {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s %s is too short", name, value),
			fmt.Sprintf("Use at least %s.", floor))
	}
	return d, nil
}
