// Package ui holds the small terminal building blocks shared by the kpi
// commands and the dashboard: the ANSI palette, status glyphs, sparklines,
// a line spinner for blocking commands and static tables.
//
// Everything renders through lipgloss, so DisableColors turns the whole
// package monochrome.
package ui
