package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

// Actions are the session operations reachable from the keyboard. Every
// method may block on the network and is only called from a tea.Cmd.
type Actions interface {
	Refresh() bool
	Login() error
	CheckLogin() (kpi.LoginStatus, error)
	Logout() error
}

// Options configures the dashboard model.
type Options struct {
	// BaseURL is shown in the header.
	BaseURL string
	// PageSize is the number of table rows per page.
	PageSize int
}

// chartOrder is the tab order for charts.
var chartOrder = kpi.Categories

const clockInterval = time.Second

// Model is the Bubble Tea model for the KPI dashboard.
type Model struct {
	actions Actions
	opts    Options

	charts     map[kpi.Category]kpi.ChartSpec
	chartIndex int

	rows       []kpi.MetricRow
	sortColumn SortColumn
	sortDesc   bool
	query      string
	paginator  paginator.Model
	search     textinput.Model
	searching  bool

	spinner   spinner.Model
	busy      bool
	source    kpi.Source
	updatedAt time.Time
	hasData   bool

	overlay  bool
	loginURL string

	toasts      []toast
	nextToastID int

	width    int
	height   int
	showHelp bool
	quitting bool
	now      func() time.Time
}

// NewModel creates a dashboard model that drives the given actions.
func NewModel(actions Actions, opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}

	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = opts.PageSize
	p.ActiveDot = lipgloss.NewStyle().Foreground(ColorAccent).Render("•")
	p.InactiveDot = MutedStyle.Render("•")
	p.TotalPages = 1

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "filter by name"
	search.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = ui.SpinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorGraph)

	return Model{
		actions:   actions,
		opts:      opts,
		charts:    make(map[kpi.Category]kpi.ChartSpec),
		paginator: p,
		search:    search,
		spinner:   sp,
		now:       time.Now,
	}
}

// Init starts the spinner and the header clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, clockTickCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = msg.Width / 3

	case chartMsg:
		m.charts[msg.spec.Category] = msg.spec

	case tableMsg:
		m.rows = msg.rows
		m.syncPaginator()

	case notifyMsg:
		return m, m.addToast(msg.n)

	case toastExpiredMsg:
		m.expireToast(msg.id)

	case busyMsg:
		m.busy = msg.busy

	case overlayMsg:
		m.overlay = msg.show
		if msg.show {
			m.loginURL = msg.loginURL
			m.searching = false
			m.showHelp = false
			m.search.Blur()
		}

	case updatedMsg:
		m.source = msg.source
		m.updatedAt = msg.at
		m.hasData = true

	case resetMsg:
		m.reset()

	case actionDoneMsg:
		if msg.action == "refresh" && !msg.ran && msg.err == nil {
			return m, m.addToast(kpi.Notification{
				Level:   kpi.LevelInfo,
				Message: "Refresh skipped",
			})
		}

	case clockTickMsg:
		return m, clockTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// reset returns to the freshly loaded state. Toasts, sort and search
// survive so a login confirmation stays visible.
func (m *Model) reset() {
	m.charts = make(map[kpi.Category]kpi.ChartSpec)
	m.rows = nil
	m.busy = false
	m.overlay = false
	m.hasData = false
	m.updatedAt = time.Time{}
	m.syncPaginator()
}

func (m *Model) setQuery(q string) {
	m.query = q
	m.paginator.Page = 0
	m.syncPaginator()
}

// syncPaginator recomputes the page count after rows or the query change.
func (m *Model) syncPaginator() {
	n := len(FilterRows(m.rows, m.query))
	if n == 0 {
		m.paginator.TotalPages = 1
	} else {
		m.paginator.SetTotalPages(n)
	}
	if m.paginator.Page >= m.paginator.TotalPages {
		m.paginator.Page = m.paginator.TotalPages - 1
	}
}

// VisibleRows returns the filtered, sorted rows on the current page.
func (m Model) VisibleRows() []kpi.MetricRow {
	rows := SortRows(FilterRows(m.rows, m.query), m.sortColumn, m.sortDesc)
	return PageRows(rows, m.paginator.Page, m.paginator.PerPage)
}

// ActiveChart returns the category shown in the chart panel.
func (m Model) ActiveChart() kpi.Category {
	return chartOrder[m.chartIndex]
}

func (m Model) refreshCmd() tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		return actionDoneMsg{action: "refresh", ran: actions.Refresh()}
	}
}

func (m Model) loginCmd() tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		return actionDoneMsg{action: "login", err: actions.Login()}
	}
}

func (m Model) checkLoginCmd() tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		_, err := actions.CheckLogin()
		return actionDoneMsg{action: "check-login", err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		return actionDoneMsg{action: "logout", err: actions.Logout()}
	}
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}
