package dashboard

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyLogin       = "l"
	KeyLoginAlt    = "enter"
	KeyCheckLogin  = "c"
	KeyLogout      = "L"
	KeyNextChart   = "tab"
	KeyPrevChart   = "shift+tab"
	KeyCycleSort   = "s"
	KeyReverseSort = "S"
	KeySearch      = "/"
	KeyClear       = "esc"
	KeyPrevPage    = "left"
	KeyPrevPageAlt = "pgup"
	KeyNextPage    = "right"
	KeyNextPageAlt = "pgdown"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyQuitAlt {
		m.quitting = true
		return true, tea.Quit
	}

	if m.overlay {
		return true, m.handleOverlayKey(key)
	}

	if m.searching {
		return true, m.handleSearchKey(msg)
	}

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyClear {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		return true, m.refreshCmd()

	case KeyLogin:
		return true, m.loginCmd()

	case KeyLoginAlt:
		return true, nil

	case KeyCheckLogin:
		return true, m.checkLoginCmd()

	case KeyLogout:
		return true, m.logoutCmd()

	case KeyNextChart:
		m.chartIndex = (m.chartIndex + 1) % len(chartOrder)
		return true, nil

	case KeyPrevChart:
		m.chartIndex = (m.chartIndex - 1 + len(chartOrder)) % len(chartOrder)
		return true, nil

	case KeyCycleSort:
		m.sortColumn = m.sortColumn.Next()
		return true, nil

	case KeyReverseSort:
		m.sortDesc = !m.sortDesc
		return true, nil

	case KeySearch:
		m.searching = true
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		return true, tea.Batch(m.search.Focus(), textinput.Blink)

	case KeyClear:
		m.setQuery("")
		return true, nil

	case KeyPrevPage, KeyPrevPageAlt:
		m.paginator.PrevPage()
		return true, nil

	case KeyNextPage, KeyNextPageAlt:
		m.paginator.NextPage()
		return true, nil
	}

	return false, nil
}

// handleOverlayKey accepts only quit and the login actions while the login
// overlay is up. Everything else is swallowed.
func (m *Model) handleOverlayKey(key string) tea.Cmd {
	switch key {
	case KeyQuit:
		m.quitting = true
		return tea.Quit
	case KeyLogin, KeyLoginAlt:
		return m.loginCmd()
	case KeyCheckLogin:
		return m.checkLoginCmd()
	}
	return nil
}

// handleSearchKey edits the search query. Enter keeps the query, Esc
// clears it; both leave search mode.
func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case KeyLoginAlt:
		m.searching = false
		m.search.Blur()
		return nil
	case KeyClear:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.setQuery("")
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.setQuery(m.search.Value())
	return cmd
}
