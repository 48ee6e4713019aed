package tui

import "github.com/charmbracelet/bubbles/table"

// returns the column index at x pixels, or -1 if not found.
func (m *MainModel) getColumnAtX(x int, cols []table.Column) int {
	currentX := 0
	for i, col := range cols {
		colWidth := col.Width + 2
		if x >= currentX && x < currentX+colWidth {
			return i
		}
		currentX += colWidth
	}
	return -1
}

func (m *MainModel) handleHeaderClick(x int) {
	colIdx := m.getColumnAtX(x, m.table.Columns())
	if colIdx < 0 || colIdx >= len(sortKeys) || sortKeys[colIdx] == "" {
		return
	}
	m.setSort(sortKeys[colIdx])
}
