package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

// Global flags
var (
	cfgFile     string
	verboseFlag bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Terminal dashboard for cost and utilization KPIs",
	Long: `kpi watches a KPI API and renders cost, utilization, network and
inventory charts plus a sortable table of entities.

Running kpi with no subcommand opens the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			os.Setenv(logger.DebugEnv, "1")
		}
		if noColorFlag {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd, rootDashboardFlags)
	},
}

var rootDashboardFlags DashboardFlags

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .kpi.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	AddDashboardFlags(rootCmd, &rootDashboardFlags)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes structured errors in their multi-line form and plain
// errors as a single failure line.
func printError(w io.Writer, err error) {
	if _, ok := err.(reportedError); ok {
		return
	}
	if errors.CodeOf(err) != "" {
		fmt.Fprint(w, err.Error())
		return
	}
	msg := err.Error()
	if isUnknownCommandError(err) {
		fmt.Fprintf(w, "%s %s\n\n  Run 'kpi --help' for usage.\n", ui.SymbolFail, msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.SymbolFail, msg)
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// flagApplier overlays command-line flags on a loaded config.
type flagApplier interface {
	Apply(cfg *config.Config) error
}

// loadConfig resolves the config file, overlays flags, applies color
// settings and validates the result. A missing file is not an error;
// defaults apply.
func loadConfig(flags flagApplier) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, "", err
	}
	if flags != nil {
		if err := flags.Apply(cfg); err != nil {
			return nil, path, err
		}
	}
	applyColorMode(cfg.UI.Color, term.IsTerminal(int(os.Stdout.Fd())))
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// applyColorMode honors ui.color. "auto" turns color off when stdout is
// not a terminal.
func applyColorMode(mode string, tty bool) bool {
	switch mode {
	case "never":
		ui.DisableColors()
		return false
	case "always":
		return true
	default:
		if !tty {
			ui.DisableColors()
			return false
		}
		return true
	}
}

// reportedError marks an error whose details were already written as JSON.
// Execute still exits non-zero but prints nothing more.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// reportJSON writes err as a JSON envelope when jsonOut is set. Otherwise
// it returns err unchanged.
func reportJSON(out io.Writer, jsonOut bool, err error) error {
	if !jsonOut || err == nil {
		return err
	}
	if werr := WriteJSONFromError(out, err); werr != nil {
		return err
	}
	return reportedError{err: err}
}
