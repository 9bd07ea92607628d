package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/stretchr/testify/assert"
)

func TestNewTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Name", Width: 12},
		{Title: "CPU %", Width: 8},
	}
	rows := []table.Row{
		{"vm-alpha", "42.0"},
		{"vm-bravo", "87.5"},
	}

	view := NewTable(columns, rows).View()

	assert.Contains(t, view, "Name")
	assert.Contains(t, view, "CPU %")
	assert.Contains(t, view, "vm-alpha")
	assert.Contains(t, view, "vm-bravo", "last row must not be clipped by the header border")
}

func TestNewTable_EmptyRows(t *testing.T) {
	tbl := NewTable([]TableColumn{{Title: "Name", Width: 10}}, nil)
	assert.Contains(t, tbl.View(), "Name")
}

func TestRenderSimpleTable(t *testing.T) {
	out := RenderSimpleTable(
		[]TableColumn{{Title: "Name", Width: 10}, {Title: "Cost", Width: 10}},
		[][]string{{"only-row", "$12.00"}},
	)

	assert.Contains(t, out, "only-row")
	assert.Contains(t, out, "$12.00")
}

func TestRenderSimpleTable_EmptyRows(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "Name", Width: 10}}, nil))
}

func TestRenderKeyValues(t *testing.T) {
	out := RenderKeyValues([][2]string{
		{"status", "logged_in"},
		{"login url", "https://example.test/login"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "status     logged_in", lines[0])
	assert.Equal(t, "login url  https://example.test/login", lines[1])
}
