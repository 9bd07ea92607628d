package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

var helpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "r", Desc: "Refresh now"},
	{Key: "l / Enter", Desc: "Log in (opens browser)"},
	{Key: "c", Desc: "Check login status"},
	{Key: "L", Desc: "Log out"},
	{Key: "Tab", Desc: "Next chart"},
	{Key: "Shift+Tab", Desc: "Previous chart"},
	{Key: "s", Desc: "Cycle sort column"},
	{Key: "S", Desc: "Reverse sort"},
	{Key: "/", Desc: "Search by name"},
	{Key: "Esc", Desc: "Clear search / close"},
	{Key: "← / →", Desc: "Previous / next page"},
	{Key: "?", Desc: "Toggle this help"},
}

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderHelpOverlay renders a centered help box with keyboard shortcuts.
func (m Model) renderHelpOverlay() string {
	lines := []string{helpTitleStyle.Render("Keyboard Shortcuts"), ""}
	for _, binding := range helpBindings {
		lines = append(lines, helpKeyStyle.Render(binding.Key)+helpDescStyle.Render(binding.Desc))
	}
	lines = append(lines, "", LabelStyle.Render("Press ? to close"))

	return lipgloss.Place(
		m.viewWidth(),
		m.viewHeight(),
		lipgloss.Center,
		lipgloss.Center,
		helpBoxStyle.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}

// renderLoginOverlay renders the sign-in prompt centered in height rows.
func (m Model) renderLoginOverlay(height int) string {
	lines := []string{
		TitleStyle.Render("Sign in required"),
		"",
		LabelStyle.Render("You need to log in to view KPI data."),
	}
	if m.loginURL != "" {
		lines = append(lines,
			"",
			MutedStyle.Render(truncate(m.loginURL, 60)),
			"",
			ValueStyle.Render("Press l or Enter to open the login page"),
		)
	} else {
		lines = append(lines, "", MutedStyle.Render("No login URL is configured."))
	}
	lines = append(lines, MutedStyle.Render("Press c to check again, q to quit"))

	return lipgloss.Place(
		m.viewWidth(),
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlayBoxStyle.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
