package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1).
			Width(100)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#767676")). // Dimmed Gray
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#af87ff")).
			Bold(true)
)

type tab int

const (
	tabEndpoints tab = iota
	tabStats
)

type focusState int

const (
	focusMain focusState = iota
	focusSide
)

// Options configures the viewer.
type Options struct {
	Provider *nsi.Provider
	// ProcessName names an owning process; may be nil.
	ProcessName func(pid uint32) string
	Refresh     time.Duration
	Version     string
}

type MainModel struct {
	table          table.Model
	input          textinput.Model
	detailViewport viewport.Model
	statsViewport  viewport.Model

	provider    *nsi.Provider
	processName func(uint32) string
	names       map[uint32]string
	refresh     time.Duration

	endpoints []model.Endpoint
	filtered  []model.Endpoint
	stats     map[model.Family]model.UDPStats
	taken     time.Time

	activeTab tab
	listFocus focusState
	statusMsg string // transient status/error message shown in status line
	width     int
	height    int
	quitting  bool

	sortCol  string
	sortDesc bool
	version  string
}

func InitialModel(opts Options) MainModel {
	t := table.New(
		table.WithColumns(baseColumns()),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = tableHeaderStyle.BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#5f00d7")). // Purple
		Bold(false)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Search Protocol, Address, Port, PID, Process..."
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Blur()

	dvp := viewport.New(0, 0)
	svp := viewport.New(0, 0)

	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = 2 * time.Second
	}

	return MainModel{
		table:          t,
		input:          ti,
		detailViewport: dvp,
		statsViewport:  svp,
		provider:       opts.Provider,
		processName:    opts.ProcessName,
		names:          make(map[uint32]string),
		refresh:        refresh,
		activeTab:      tabEndpoints,
		listFocus:      focusMain,
		sortCol:        "port",
		version:        opts.Version,
	}
}

func Start(opts Options) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	p := tea.NewProgram(InitialModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.refreshSnapshot(),
		waitTick(m.refresh),
		tea.EnableMouseCellMotion,
	)
}
