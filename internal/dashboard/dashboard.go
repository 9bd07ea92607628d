package dashboard

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"golang.org/x/term"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/kpi"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

// stopTimeout bounds session shutdown after the TUI exits.
const stopTimeout = 5 * time.Second

// RunOptions configures the dashboard execution.
type RunOptions struct {
	Config     *config.Config
	Logger     logger.Logger
	Registerer prometheus.Registerer
	Opener     kpi.Opener
	// Plain forces line output even on a terminal.
	Plain bool
	// Out receives plain output. Defaults to os.Stdout.
	Out io.Writer
}

// Run starts a session and shows it until the user quits or ctx ends.
// When stdout is not a TTY it prints plain updates instead.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.Plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runPlain(ctx, opts)
	}

	bridge := NewBridge(nil)
	session, app, err := NewApp(opts, bridge)
	if err != nil {
		return err
	}

	model := NewModel(session, Options{
		BaseURL:  opts.Config.Server.BaseURL,
		PageSize: opts.Config.UI.PageSize,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(program)

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer stopApp(app, opts.Logger)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func runPlain(ctx context.Context, opts RunOptions) error {
	view := NewPlainView(opts.Out)
	session, app, err := NewApp(opts, view)
	if err != nil {
		return err
	}
	view.OnLoginRequired(func() { _ = session.Login() })
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer stopApp(app, opts.Logger)

	<-ctx.Done()
	return nil
}

// NewApp builds the fx application around a session that drives view.
func NewApp(opts RunOptions, view kpi.View) (*kpi.Session, *fx.App, error) {
	var session *kpi.Session
	app := fx.New(
		fx.NopLogger,
		fx.Supply(opts.Config),
		fx.Provide(
			func() logger.Logger { return opts.Logger },
			func() kpi.View { return view },
			func() kpi.Opener { return opts.Opener },
			func() prometheus.Registerer { return opts.Registerer },
		),
		kpi.Module,
		fx.Populate(&session),
	)
	if err := app.Err(); err != nil {
		return nil, nil, err
	}
	return session, app, nil
}

func stopApp(app *fx.App, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		log.Warn("session shutdown: %v", err)
	}
}
