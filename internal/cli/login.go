package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/cli/browser"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/kpi"
	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

var (
	checkLoginFlags ServerFlags
	checkLoginJSON  bool

	loginFlags   ServerFlags
	loginTimeout string
	loginYes     bool

	logoutFlags ServerFlags
)

var checkLoginCmd = &cobra.Command{
	Use:   "check-login",
	Short: "Show whether the KPI API considers you logged in",
	Long: `Call /api/check-login once and print the result.

Examples:
  kpi check-login
  kpi check-login --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(checkLoginFlags)
		if err != nil {
			return reportJSON(cmd.OutOrStdout(), checkLoginJSON, err)
		}
		return runCheckLogin(cmd.Context(), cfg, cmd.OutOrStdout(), checkLoginJSON)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the browser",
	Long: `Open the identity provider's login page and wait until the KPI API
reports you as logged in.

The login URL comes from the server's check-login answer, falling back to
auth.login_url. Status is polled every auth.poll_interval.

Examples:
  kpi login
  kpi login --yes --timeout 2m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(loginFlags)
		if err != nil {
			return err
		}
		if loginTimeout != "" {
			d, err := ParseDuration("timeout", loginTimeout, time.Second)
			if err != nil {
				return err
			}
			cfg.Auth.LoginTimeout = d
		}

		ctx, stop := withSignals(cmd.Context())
		defer stop()

		interactive := !loginYes && term.IsTerminal(int(os.Stdin.Fd()))
		return runLogin(ctx, cfg, LoginOptions{
			Out:     cmd.OutOrStdout(),
			Open:    browser.OpenURL,
			Confirm: confirmOpen(interactive),
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the server-side session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(logoutFlags)
		if err != nil {
			return err
		}
		return runLogout(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	AddServerFlags(checkLoginCmd, &checkLoginFlags)
	checkLoginCmd.Flags().BoolVar(&checkLoginJSON, "json", false, "output as JSON")

	AddServerFlags(loginCmd, &loginFlags)
	loginCmd.Flags().StringVar(&loginTimeout, "timeout", "", "give up after this long (default auth.login_timeout)")
	loginCmd.Flags().BoolVarP(&loginYes, "yes", "y", false, "open the browser without asking")

	AddServerFlags(logoutCmd, &logoutFlags)

	rootCmd.AddCommand(checkLoginCmd, loginCmd, logoutCmd)
}

// LoginStatusOutput is the --json shape of check-login.
type LoginStatusOutput struct {
	State    string `json:"state"`
	LoginURL string `json:"login_url,omitempty"`
	BaseURL  string `json:"base_url"`
}

func runCheckLogin(ctx context.Context, cfg *config.Config, out io.Writer, jsonOut bool) error {
	client := newClient(cfg)
	status, err := client.CheckLogin(ctx)
	if err != nil {
		return reportJSON(out, jsonOut, err)
	}

	loginURL := status.LoginURL
	if status.State == kpi.LoggedOut && loginURL == "" {
		loginURL = cfg.Auth.LoginURL
	}
	if jsonOut {
		return WriteJSONSuccess(out, LoginStatusOutput{
			State:    status.State.String(),
			LoginURL: loginURL,
			BaseURL:  client.BaseURL(),
		})
	}

	if status.State == kpi.LoggedIn {
		printLine(out, ui.FormatStatus(ui.SymbolSuccess, ui.ColorSuccess, "Logged in at "+client.BaseURL(), 0))
		return nil
	}
	printLine(out, ui.FormatStatus(ui.SymbolWarning, ui.ColorWarning, "Not logged in at "+client.BaseURL(), 0))
	if loginURL != "" {
		printLine(out, ui.FormatHint("Sign in at "+loginURL+" or run 'kpi login'"))
	}
	return nil
}

// LoginOptions holds the side effects of the login command.
type LoginOptions struct {
	Out io.Writer
	// Open launches the login page.
	Open func(url string) error
	// Confirm asks before opening. Nil means yes.
	Confirm func(url string) (bool, error)
}

func runLogin(ctx context.Context, cfg *config.Config, opts LoginOptions) error {
	client := newClient(cfg)

	status, err := client.CheckLogin(ctx)
	if err != nil {
		return err
	}
	if status.State == kpi.LoggedIn {
		printLine(opts.Out, ui.FormatStatus(ui.SymbolSuccess, ui.ColorSuccess, "Already logged in", 0))
		return nil
	}

	loginURL := status.LoginURL
	if loginURL == "" {
		loginURL = cfg.Auth.LoginURL
	}
	if loginURL == "" {
		return errors.New(errors.ErrAuth,
			"The server didn't provide a login URL",
			"Set auth.login_url with 'kpi config set auth.login_url <url>'")
	}

	if opts.Confirm != nil {
		ok, err := opts.Confirm(loginURL)
		if err != nil {
			return err
		}
		if !ok {
			printLine(opts.Out, "Cancelled.")
			return nil
		}
	}

	if opts.Open == nil || opts.Open(loginURL) != nil {
		printLine(opts.Out, ui.FormatHint("Open "+loginURL+" in your browser to sign in"))
	}

	waitCtx := ctx
	if cfg.Auth.LoginTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, cfg.Auth.LoginTimeout)
		defer cancel()
	}

	spin := ui.NewSpinner(opts.Out, "Waiting for login")
	spin.Start()
	if err := waitForLogin(waitCtx, client, cfg.Auth.PollInterval); err != nil {
		spin.Fail()
		if ctx.Err() == nil && waitCtx.Err() != nil {
			return errors.New(errors.ErrAuth,
				fmt.Sprintf("Still not logged in after %s", cfg.Auth.LoginTimeout),
				"Finish signing in, then run 'kpi login' again or raise --timeout")
		}
		return err
	}
	spin.SetLabel("Logged in")
	spin.Success()
	return nil
}

// waitForLogin polls until the server reports logged_in. Failed checks are
// retried on the next tick.
func waitForLogin(ctx context.Context, client kpi.LoginChecker, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			status, err := client.CheckLogin(ctx)
			if err == nil && status.State == kpi.LoggedIn {
				return nil
			}
		}
	}
}

func confirmOpen(interactive bool) func(string) (bool, error) {
	if !interactive {
		return nil
	}
	return func(url string) (bool, error) {
		open := true
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Open the login page in your browser?").
					Description(url).
					Value(&open),
			),
		)
		if err := form.Run(); err != nil {
			return false, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --yes to skip the prompt")
		}
		return open, nil
	}
}

func runLogout(ctx context.Context, cfg *config.Config, out io.Writer) error {
	client := newClient(cfg)
	if err := client.Logout(ctx); err != nil {
		return err
	}
	printLine(out, ui.FormatStatus(ui.SymbolSuccess, ui.ColorSuccess, "Logged out of "+client.BaseURL(), 0))
	return nil
}
