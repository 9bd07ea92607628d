package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/dashboard"
	"github.com/rileyhilliard/kpiwatch/internal/kpi"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

var (
	fetchFlags ServerFlags
	fetchJSON  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch KPI data once and print it",
	Long: `Fetch /api/kpi-data once and print the chart series and entity table.

With --json the raw payload is printed inside the standard envelope.

Examples:
  kpi fetch
  kpi fetch --json | jq '.data.metrics[] | select(.cpu > 80)'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(fetchFlags)
		if err != nil {
			return reportJSON(cmd.OutOrStdout(), fetchJSON, err)
		}
		return runFetch(cmd.Context(), cfg, cmd.OutOrStdout(), fetchJSON)
	},
}

func init() {
	AddServerFlags(fetchCmd, &fetchFlags)
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(ctx context.Context, cfg *config.Config, out io.Writer, jsonOut bool) error {
	client := newClient(cfg)

	start := time.Now()
	payload, err := client.FetchMetrics(ctx)
	if err != nil {
		return reportJSON(out, jsonOut, err)
	}
	if jsonOut {
		return WriteJSONSuccess(out, payload)
	}

	printLine(out, ui.FormatStatus(ui.SymbolSuccess, ui.ColorSuccess,
		"Fetched KPI data from "+client.BaseURL(), time.Since(start)))
	presenter := kpi.NewPresenter(dashboard.NewPlainView(out), logger.Noop(), nil, cfg.UI.ToastDuration)
	presenter.Render(payload)
	return nil
}

func newClient(cfg *config.Config) *kpi.Client {
	return kpi.NewClient(cfg.Server.BaseURL, kpi.WithTimeout(cfg.Server.RequestTimeout))
}

func printLine(out io.Writer, line string) {
	io.WriteString(out, line+"\n")
}
