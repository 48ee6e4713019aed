package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/nsistat/udpstat/internal/output"
	"github.com/nsistat/udpstat/internal/pipeline"
	"github.com/nsistat/udpstat/pkg/model"
	"github.com/samber/lo"
)

type snapshotMsg pipeline.Snapshot

func (m MainModel) refreshSnapshot() tea.Cmd {
	provider := m.provider
	return func() tea.Msg {
		snap, err := pipeline.Analyze(provider, pipeline.AnalyzeConfig{Owners: true, Stats: true})
		if err != nil {
			return err
		}
		return snapshotMsg(snap)
	}
}

// nameOf returns the command name of pid, asking the source once per PID.
func (m *MainModel) nameOf(pid uint32) string {
	if pid == 0 || m.processName == nil {
		return ""
	}
	if name, ok := m.names[pid]; ok {
		return name
	}
	name := m.processName(pid)
	m.names[pid] = name
	return name
}

func (m *MainModel) applySnapshot(s pipeline.Snapshot) {
	m.endpoints = s.Endpoints
	m.stats = s.Stats
	m.taken = s.Taken

	// PIDs get reused; drop names of processes that no longer own a socket
	live := lo.SliceToMap(s.Endpoints, func(e model.Endpoint) (uint32, bool) { return e.PID, true })
	for pid := range m.names {
		if !live[pid] {
			delete(m.names, pid)
		}
	}

	m.sortEndpoints()
	m.filterEndpoints()
	m.updateDetailViewport()
	m.updateStatsViewport()
}

func (m *MainModel) sortEndpoints() {
	slices.SortStableFunc(m.endpoints, func(a, b model.Endpoint) int {
		var c int
		switch m.sortCol {
		case "proto":
			c = cmp.Compare(a.Family, b.Family)
		case "addr":
			c = a.Addr.Compare(b.Addr)
		case "pid":
			c = cmp.Compare(a.PID, b.PID)
		case "name":
			c = strings.Compare(strings.ToLower(m.nameOf(a.PID)), strings.ToLower(m.nameOf(b.PID)))
		default:
			c = cmp.Compare(a.Port, b.Port)
		}
		if m.sortDesc {
			return -c
		}
		return c
	})
}

func (m *MainModel) filterEndpoints() {
	filter := strings.ToLower(m.input.Value())
	var rows []table.Row

	m.filtered = nil
	for _, e := range m.endpoints {
		name := m.nameOf(e.PID)
		pid := ""
		if e.PID != 0 {
			pid = strconv.FormatUint(uint64(e.PID), 10)
		}
		scope := ""
		if e.ScopeID != 0 {
			scope = strconv.FormatUint(uint64(e.ScopeID), 10)
		}
		row := table.Row{
			e.Protocol(),
			e.Addr.String(),
			strconv.Itoa(int(e.Port)),
			scope,
			pid,
			name,
		}

		if filter != "" && !lo.SomeBy(row, func(col string) bool {
			return strings.Contains(strings.ToLower(col), filter)
		}) {
			continue
		}
		m.filtered = append(m.filtered, e)
		rows = append(rows, row)
	}
	m.table.SetRows(rows)
}

func baseColumns() []table.Column {
	return []table.Column{
		{Title: "Proto", Width: 6},
		{Title: "Address", Width: 40},
		{Title: "Port", Width: 7},
		{Title: "Scope", Width: 6},
		{Title: "PID", Width: 8},
		{Title: "Process", Width: 20},
	}
}

// sortKeys maps table columns to sort keys; the scope column has none.
var sortKeys = []string{"proto", "addr", "port", "", "pid", "name"}

func (m *MainModel) getColumns() []table.Column {
	cols := baseColumns()
	for i, key := range sortKeys {
		if key != "" && m.sortCol == key {
			if m.sortDesc {
				cols[i].Title += " ↓"
			} else {
				cols[i].Title += " ↑"
			}
		}
	}
	return cols
}

// setSort switches to key, or flips the direction when key is current.
func (m *MainModel) setSort(key string) {
	if m.sortCol == key {
		m.sortDesc = !m.sortDesc
	} else {
		m.sortCol = key
		m.sortDesc = false
	}

	existing := m.table.Columns()
	cols := m.getColumns()
	for i := range existing {
		if i < len(cols) {
			cols[i].Width = existing[i].Width
		}
	}
	m.table.SetColumns(cols)
	m.sortEndpoints()
	m.filterEndpoints()
	m.updateDetailViewport()
}

func (m *MainModel) selectedEndpoint() (model.Endpoint, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.filtered) {
		return model.Endpoint{}, false
	}
	return m.filtered[i], true
}

func (m *MainModel) updateDetailViewport() {
	e, ok := m.selectedEndpoint()
	if !ok {
		m.detailViewport.SetContent("")
		return
	}
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Endpoint:"), e.AddrPort())
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Family:"), e.Family)
	if e.ScopeID != 0 {
		fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("Scope:"), e.ScopeID)
	}

	if e.PID == 0 {
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
		fmt.Fprintf(&b, "\n%s\n", dimStyle.Render("No owning process found."))
	} else {
		siblings := lo.Filter(m.endpoints, func(o model.Endpoint, _ int) bool { return o.PID == e.PID })
		fmt.Fprintf(&b, "\n%s\n", labelStyle.Render("Owner:"))
		output.PrintTree(&b, siblings, m.nameOf, true)
	}

	content := b.String()
	if m.detailViewport.Width > 0 {
		content = wrap.String(content, m.detailViewport.Width)
	}
	m.detailViewport.SetContent(content)
}

func (m *MainModel) updateStatsViewport() {
	var b strings.Builder
	if len(m.stats) == 0 {
		b.WriteString("No UDP counters available on this system.\n")
	} else {
		output.RenderStats(&b, pipeline.Families(), m.stats)
	}
	if !m.taken.IsZero() {
		fmt.Fprintf(&b, "\n%s %s\n", labelStyle.Render("Taken:"), m.taken.Format("15:04:05"))
	}

	content := b.String()
	if m.statsViewport.Width > 0 {
		content = wrap.String(content, m.statsViewport.Width)
	}
	m.statsViewport.SetContent(content)
}
