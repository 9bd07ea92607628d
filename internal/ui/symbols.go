package ui

// Status glyphs shared by the CLI commands and the dashboard.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolWarning  = "!"
	SymbolInfo     = "i"
	SymbolPending  = "○"
	SymbolProgress = "◐"
	SymbolComplete = "●"
)
