package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/kpiwatch/internal/demoserver"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

var (
	demoAddr     string
	demoLoggedIn bool
	demoJitter   float64
	demoLoginURL string
)

var demoServerCmd = &cobra.Command{
	Use:   "demo-server",
	Short: "Run a local KPI API with fixture data",
	Long: `Serve /api/check-login, /api/kpi-data and /api/logout with fixture data.

The session starts logged out (unless --logged-in). Visiting /login marks it
logged in, so 'kpi login' and the dashboard overlay can be tried end to end.

Examples:
  kpi demo-server
  kpi demo-server --addr :8080 --logged-in
  kpi --base-url http://127.0.0.1:5000 --gated`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := withSignals(cmd.Context())
		defer stop()

		srv := demoserver.New(demoserver.Options{
			LoggedIn: demoLoggedIn,
			Jitter:   demoJitter,
			LoginURL: demoLoginURL,
			Logger:   logger.NewEnvLogger("demo"),
		})
		return srv.ListenAndServe(ctx, demoAddr)
	},
}

func init() {
	demoServerCmd.Flags().StringVar(&demoAddr, "addr", "127.0.0.1:5000", "listen address")
	demoServerCmd.Flags().BoolVar(&demoLoggedIn, "logged-in", false, "start with an authenticated session")
	demoServerCmd.Flags().Float64Var(&demoJitter, "jitter", 1, "scale of random variation between responses (0 for static data)")
	demoServerCmd.Flags().StringVar(&demoLoginURL, "login-url", "", "login_url to advertise (default: this server's /login)")
	rootCmd.AddCommand(demoServerCmd)
}
