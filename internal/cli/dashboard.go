package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cli/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/kpiwatch/internal/dashboard"
	"github.com/rileyhilliard/kpiwatch/internal/kpi"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

var dashboardFlags DashboardFlags

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live KPI dashboard",
	Long: `Open the full-screen KPI dashboard.

The dashboard paints the last cached payload right away, fetches fresh data,
then refreshes on a timer. With --gated (or auth.gated) nothing is fetched
until the login check passes.

Keyboard shortcuts:
  r           Refresh now
  l / Enter   Open the login page (when sign-in is required)
  c           Re-check login
  L           Log out
  tab         Cycle charts
  s / S       Sort column / direction
  /           Search by name
  ←/→         Page through the table
  ?           Help
  q           Quit

With --plain, or when stdout is not a terminal, updates are printed as lines.
There are no keys in that mode, so when sign-in is required the login page is
opened right away and the dashboard waits for the login to complete.

Examples:
  kpi dashboard
  kpi dashboard --base-url https://kpi.internal --interval 1m
  kpi dashboard --gated --metrics-addr :9464`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd, dashboardFlags)
	},
}

func init() {
	AddDashboardFlags(dashboardCmd, &dashboardFlags)
	rootCmd.AddCommand(dashboardCmd)
}

func dashboardCommand(cmd *cobra.Command, flags DashboardFlags) error {
	cfg, _, err := loadConfig(flags)
	if err != nil {
		return err
	}

	plain := flags.Plain || !term.IsTerminal(int(os.Stdout.Fd()))

	// The TUI owns the terminal, so logs go to a file.
	log := logger.NewEnvLogger("kpi")
	if !plain {
		fileLog, closer, err := logger.NewFileLogger(cfg.LogFile(), "kpi")
		if err != nil {
			return err
		}
		defer closer.Close()
		log = fileLog
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	reg := prometheus.NewRegistry()
	if flags.MetricsAddr != "" {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		shutdown := startMetricsServer(flags.MetricsAddr, reg, logger.With(log, "metrics"))
		defer shutdown()
	}

	return dashboard.Run(ctx, dashboard.RunOptions{
		Config:     cfg,
		Logger:     log,
		Registerer: reg,
		Opener:     kpi.OpenerFunc(browser.OpenURL),
		Plain:      plain,
		Out:        cmd.OutOrStdout(),
	})
}

// withSignals returns a context canceled on SIGINT or SIGTERM.
func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
