package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nsistat/udpstat/internal/pipeline"
)

type tickMsg time.Time

func waitTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Screen rows of the list layout, counted from the top border.
const (
	tabRow       = 1
	searchRow    = 5
	tableHeadRow = 7
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tickMsg:
		if !m.quitting && !m.input.Focused() {
			cmd = m.refreshSnapshot()
		}
		return m, tea.Batch(cmd, waitTick(m.refresh))

	case snapshotMsg:
		m.statusMsg = ""
		m.applySnapshot(pipeline.Snapshot(msg))
		return m, nil

	case error:
		m.statusMsg = msg.Error()
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *MainModel) resize(width, height int) {
	m.width = width
	m.height = height

	availableWidth := width - 6
	if availableWidth < 0 {
		availableWidth = 0
	}

	listHeight := height - 11
	if listHeight < 5 {
		listHeight = 5
	}

	listPaneWidth := int(float64(availableWidth) * 0.7)
	if listPaneWidth < 10 {
		listPaneWidth = 10
	}
	tableWidth := listPaneWidth - 4
	if tableWidth < 10 {
		tableWidth = 10
	}

	fixedColumnsWidth := 47 // Proto(6)+Port(7)+Scope(6)+PID(8)+Process(20)
	addrWidth := tableWidth - fixedColumnsWidth - 12
	if addrWidth < 15 {
		addrWidth = 15
	}
	columns := m.getColumns()
	columns[1].Width = addrWidth
	m.table.SetColumns(columns)
	m.table.SetWidth(tableWidth)
	m.table.SetHeight(listHeight)

	detailWidth := availableWidth - listPaneWidth - 4
	if detailWidth < 10 {
		detailWidth = 10
	}
	m.detailViewport.Width = detailWidth
	m.detailViewport.Height = max(listHeight-2, 0)

	m.statsViewport.Width = availableWidth
	m.statsViewport.Height = listHeight

	m.updateDetailViewport()
	m.updateStatsViewport()
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.input.Focused() {
		switch msg.String() {
		case "esc", "enter":
			m.input.Blur()
			return m, nil
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		m.input, cmd = m.input.Update(msg)
		m.filterEndpoints()
		m.table.SetCursor(0)
		m.updateDetailViewport()
		return m, cmd
	}

	m.statusMsg = ""
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "1":
		m.activeTab = tabEndpoints
		return m, nil
	case "2":
		m.activeTab = tabStats
		return m, nil
	case "r":
		return m, m.refreshSnapshot()
	}

	if m.activeTab == tabStats {
		m.statsViewport, cmd = m.statsViewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "/":
		m.input.Focus()
		return m, nil
	case "tab":
		if m.listFocus == focusMain {
			m.listFocus = focusSide
			m.table.Blur()
		} else {
			m.listFocus = focusMain
			m.table.Focus()
		}
		return m, nil
	case "f":
		m.setSort("proto")
		return m, nil
	case "a":
		m.setSort("addr")
		return m, nil
	case "p":
		m.setSort("port")
		return m, nil
	case "o":
		m.setSort("pid")
		return m, nil
	case "n":
		m.setSort("name")
		return m, nil
	}

	if m.listFocus == focusSide {
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}
	m.table, cmd = m.table.Update(msg)
	m.updateDetailViewport()
	return m, cmd
}

func (m MainModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	isWheel := msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown
	if !isWheel {
		m.statusMsg = ""
	}

	// Tabs
	if msg.Y == tabRow && !isWheel {
		switch {
		case msg.X >= 11 && msg.X < 25: // "1. Endpoints"
			m.activeTab = tabEndpoints
		case msg.X >= 25 && msg.X < 35: // "2. Stats"
			m.activeTab = tabStats
		}
		return m, nil
	}

	if m.activeTab == tabStats {
		m.statsViewport, cmd = m.statsViewport.Update(msg)
		return m, cmd
	}

	if !isWheel && msg.Y != searchRow && m.input.Focused() {
		m.input.Blur()
	}

	if msg.Y == tableHeadRow && !isWheel {
		m.handleHeaderClick(msg.X - 2)
		return m, nil
	}

	if isWheel {
		if m.listFocus == focusSide {
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}
		if msg.Button == tea.MouseButtonWheelUp {
			m.table.MoveUp(1)
		} else {
			m.table.MoveDown(1)
		}
		m.updateDetailViewport()
	}
	return m, nil
}
