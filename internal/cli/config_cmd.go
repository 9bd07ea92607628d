package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or edit .kpi.yaml",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value, keeping comments and layout",
	Long: `Set a dotted key in the active config file. The edited file is
validated and left untouched if the new value is rejected.

Keys:
  ` + strings.Join(config.SettableKeys(), "\n  ") + `

Examples:
  kpi config set server.base_url https://kpi.internal
  kpi config set refresh.interval 1m`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.SettableKeys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		return configSet(path, args[0], args[1], cmd.OutOrStdout())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(nil)
		if err != nil {
			return err
		}
		return configShow(cfg, path, cmd.OutOrStdout())
	},
}

func init() {
	configCmd.AddCommand(configSetCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func configSet(path, key, value string, out io.Writer) error {
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'kpi init' first, or pass --config")
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't read "+path, "Check file permissions")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Valid keys: "+strings.Join(config.SettableKeys(), ", "))
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if rerr := os.WriteFile(path, original, 0o644); rerr != nil {
			return errors.WrapWithCode(rerr, errors.ErrConfig,
				"Couldn't restore "+path+" after a rejected value", "")
		}
		return err
	}

	printLine(out, ui.FormatStatus(ui.SymbolSuccess, ui.ColorSuccess, fmt.Sprintf("Set %s = %s", key, value), 0))
	return nil
}

func configShow(cfg *config.Config, path string, out io.Writer) error {
	source := path
	if source == "" {
		source = "built-in defaults"
	}
	printLine(out, ui.FormatHint("# from "+source))
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
