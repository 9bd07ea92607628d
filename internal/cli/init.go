package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

var (
	initBaseURL        string
	initForce          bool
	initNonInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .kpi.yaml configuration",
	Long: `Create a .kpi.yaml file in the current directory.

Prompts for the API base URL, whether data requires login, and the refresh
interval. In CI (or with --non-interactive) defaults and flags are used.

Examples:
  kpi init
  kpi init --base-url https://kpi.internal --non-interactive
  kpi init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := getInitDefaults()
		opts := InitOptions{
			Dir:            ".",
			BaseURL:        initBaseURL,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive || defaults.NonInteractive,
			Out:            cmd.OutOrStdout(),
		}
		if opts.BaseURL == "" {
			opts.BaseURL = defaults.BaseURL
		}
		return Init(opts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initBaseURL, "base-url", "", "KPI API base URL")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and use defaults")
	rootCmd.AddCommand(initCmd)
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string
	BaseURL        string
	Overwrite      bool
	NonInteractive bool
	Out            io.Writer
}

// InitDefaults are init values taken from the environment.
type InitDefaults struct {
	BaseURL        string
	NonInteractive bool
}

// getInitDefaults reads KPI_SERVER_BASE_URL and treats CI or
// KPI_NON_INTERACTIVE as a request to skip prompts.
func getInitDefaults() InitDefaults {
	return InitDefaults{
		BaseURL:        os.Getenv(config.EnvPrefix + "_SERVER_BASE_URL"),
		NonInteractive: os.Getenv(config.EnvPrefix+"_NON_INTERACTIVE") != "" || os.Getenv("CI") != "",
	}
}

var intervalChoices = []time.Duration{30 * time.Second, time.Minute, 5 * time.Minute, 15 * time.Minute}

// Init writes a new .kpi.yaml into opts.Dir.
func Init(opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	configPath := filepath.Join(opts.Dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			printLine(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.BaseURL != "" {
		cfg.Server.BaseURL = opts.BaseURL
	}

	if !opts.NonInteractive {
		if err := promptInit(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't encode the config", "")
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+configPath,
			"Check directory permissions")
	}

	printLine(opts.Out, ui.FormatStatus(ui.SymbolSuccess, ui.ColorSuccess, "Created "+configPath, 0))
	printLine(opts.Out, ui.FormatHint("Run 'kpi' to open the dashboard"))
	return nil
}

func promptInit(cfg *config.Config) error {
	baseURL := cfg.Server.BaseURL
	gated := cfg.Auth.Gated
	interval := cfg.Refresh.Interval

	options := make([]huh.Option[time.Duration], len(intervalChoices))
	for i, d := range intervalChoices {
		options[i] = huh.NewOption(d.String(), d)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("KPI API base URL").
				Description("Serves /api/check-login and /api/kpi-data").
				Value(&baseURL).
				Validate(func(s string) error {
					probe := config.DefaultConfig()
					probe.Server.BaseURL = s
					return config.Validate(probe)
				}),
			huh.NewConfirm().
				Title("Require login before fetching data?").
				Value(&gated),
			huh.NewSelect[time.Duration]().
				Title("Refresh interval").
				Options(options...).
				Value(&interval),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Run with --non-interactive to use defaults")
	}

	cfg.Server.BaseURL = baseURL
	cfg.Auth.Gated = gated
	cfg.Refresh.Interval = interval
	return nil
}
