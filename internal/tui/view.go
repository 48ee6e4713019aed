package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)

	status := "Mode: Navigation (Press / to search)"
	if m.input.Focused() {
		status = "Mode: Searching (Press Esc/Enter to stop)"
	}
	if m.statusMsg != "" {
		status = errorStyle.Render(m.statusMsg)
	}

	activeBorderColor := lipgloss.Color("#5f5fd7") // Purple/Blue
	dimBorderColor := lipgloss.Color("#585858")    // Dark Gray

	var mainContent, helpText string
	if m.activeTab == tabStats {
		mainContent = m.statsViewport.View()
		helpText = "1/2: Tab | r: Refresh | Esc/q: Quit | Up/Down: Scroll"
	} else {
		sideBorderColor := dimBorderColor
		sideHeaderColor := lipgloss.Color("#bcbcbc") // Light Gray
		if m.listFocus == focusSide {
			sideBorderColor = activeBorderColor
			sideHeaderColor = activeBorderColor
		}

		s := table.DefaultStyles()
		if m.listFocus == focusMain {
			s.Header = tableHeaderStyle.BorderForeground(activeBorderColor)
		} else {
			s.Header = tableHeaderStyle.BorderForeground(dimBorderColor)
		}
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
			Background(lipgloss.Color("#5f00d7")). // Purple
			Bold(false)
		m.table.SetStyles(s)

		detailHeader := "Details"
		if e, ok := m.selectedEndpoint(); ok {
			detailHeader = e.Protocol() + " " + e.AddrPort()
		}
		if !m.detailViewport.AtTop() && !m.detailViewport.AtBottom() {
			detailHeader += " ↕"
		} else if !m.detailViewport.AtTop() {
			detailHeader += " ↑"
		} else if !m.detailViewport.AtBottom() {
			detailHeader += " ↓"
		}

		detailContainerStyle := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(sideBorderColor).
			PaddingLeft(2).
			Height(m.table.Height())
		detailHeaderStyle := tableHeaderStyle.
			Width(m.detailViewport.Width).
			Foreground(sideHeaderColor).
			BorderForeground(sideBorderColor)

		listPaneWidth := int(float64(m.width-6) * 0.7)
		if listPaneWidth < 10 {
			listPaneWidth = 10
		}

		mainContent = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(listPaneWidth).Render(m.table.View()),
			detailContainerStyle.Render(
				lipgloss.JoinVertical(lipgloss.Left,
					detailHeaderStyle.Render(detailHeader),
					lipgloss.NewStyle().PaddingLeft(1).Render(m.detailViewport.View()),
				),
			),
		)
		helpText = fmt.Sprintf("Total: %d | f/a/p/o/n: Sort | r: Refresh | Esc/q: Quit | Tab: Focus | Up/Down: Scroll", len(m.filtered))
	}

	footerContent := helpText
	if m.version != "" {
		gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.version)
		if gap > 0 {
			footerContent = helpText + strings.Repeat(" ", gap) + m.version
		}
	}

	var endpointsTab, statsTab string
	if m.activeTab == tabEndpoints {
		endpointsTab = activeTabStyle.Render("1. Endpoints")
		statsTab = inactiveTabStyle.Render("2. Stats")
	} else {
		endpointsTab = inactiveTabStyle.Render("1. Endpoints")
		statsTab = activeTabStyle.Render("2. Stats")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("udpstat"),
		endpointsTab,
		statsTab,
	)

	return outerStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(1).Render(""),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(status),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(m.input.View()),
			mainContent,
			lipgloss.NewStyle().Height(1).Render(""),
			footerStyle.Width(m.width-4).Render(footerContent),
		),
	)
}
