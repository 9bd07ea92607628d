package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

// SortColumn is the table column rows are ordered by.
type SortColumn int

const (
	SortByName SortColumn = iota
	SortByCPU
	SortByMemory
	SortByDisk
	SortByNetworkIn
	SortByNetworkOut
	SortByCost
	sortColumnCount
)

var columnTitles = [...]string{"Name", "CPU %", "Mem %", "Disk %", "Net In", "Net Out", "Cost"}

// String returns the column title.
func (s SortColumn) String() string {
	if s < 0 || s >= sortColumnCount {
		return columnTitles[0]
	}
	return columnTitles[s]
}

// Next cycles to the next column.
func (s SortColumn) Next() SortColumn {
	return (s + 1) % sortColumnCount
}

func (s SortColumn) value(r kpi.MetricRow) float64 {
	switch s {
	case SortByCPU:
		return r.CPU
	case SortByMemory:
		return r.Memory
	case SortByDisk:
		return r.Disk
	case SortByNetworkIn:
		return r.NetworkIn
	case SortByNetworkOut:
		return r.NetworkOut
	case SortByCost:
		return r.Cost
	default:
		return 0
	}
}

// SortRows returns a sorted copy of rows. Ties keep their original order.
func SortRows(rows []kpi.MetricRow, col SortColumn, desc bool) []kpi.MetricRow {
	out := make([]kpi.MetricRow, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		if col == SortByName {
			a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
			if desc {
				return a > b
			}
			return a < b
		}
		a, b := col.value(out[i]), col.value(out[j])
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}

// FilterRows keeps rows whose name contains query, ignoring case.
func FilterRows(rows []kpi.MetricRow, query string) []kpi.MetricRow {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}
	var out []kpi.MetricRow
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Name), query) {
			out = append(out, r)
		}
	}
	return out
}

// PageRows returns the rows on the given zero-based page.
func PageRows(rows []kpi.MetricRow, page, size int) []kpi.MetricRow {
	if size <= 0 || page < 0 {
		return nil
	}
	start := page * size
	if start >= len(rows) {
		return nil
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageCount returns the number of pages needed for n rows.
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// TableColumns are the metrics table columns.
func TableColumns() []ui.TableColumn {
	return []ui.TableColumn{
		{Title: columnTitles[SortByName], Width: 24},
		{Title: columnTitles[SortByCPU], Width: 7},
		{Title: columnTitles[SortByMemory], Width: 7},
		{Title: columnTitles[SortByDisk], Width: 7},
		{Title: columnTitles[SortByNetworkIn], Width: 9},
		{Title: columnTitles[SortByNetworkOut], Width: 9},
		{Title: columnTitles[SortByCost], Width: 10},
	}
}

// FormatRow renders one metric row as table cells.
func FormatRow(r kpi.MetricRow) []string {
	return []string{
		r.Name,
		fmt.Sprintf("%.1f", r.CPU),
		fmt.Sprintf("%.1f", r.Memory),
		fmt.Sprintf("%.1f", r.Disk),
		fmt.Sprintf("%.2f", r.NetworkIn),
		fmt.Sprintf("%.2f", r.NetworkOut),
		fmt.Sprintf("$%.2f", r.Cost),
	}
}

// renderTable draws the given page of rows with the sort column marked.
func renderTable(rows []kpi.MetricRow, col SortColumn, desc bool) string {
	cols := TableColumns()
	arrow := "↑"
	if desc {
		arrow = "↓"
	}
	cols[col].Title += " " + arrow

	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row(FormatRow(r))
	}
	t := ui.NewTable(cols, tableRows)
	return t.View()
}
