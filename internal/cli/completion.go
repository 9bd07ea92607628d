package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for kpi.

Examples:
  # Bash
  kpi completion bash > /etc/bash_completion.d/kpi

  # Zsh
  kpi completion zsh > "${fpath[1]}/_kpi"

  # Fish
  kpi completion fish > ~/.config/fish/completions/kpi.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCompletion(rootCmd, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func writeCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(w)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletion(w)
	default:
		return errors.New(errors.ErrConfig,
			"Unknown shell: "+shell,
			"Supported shells: bash, zsh, fish, powershell")
	}
}
