package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/nsistat/udpstat/pkg/model"
)

var statsHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var statsCellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderStats prints the per-family counters as a table, in the order of
// families. Families missing from stats are skipped.
func RenderStats(w io.Writer, families []model.Family, stats map[model.Family]model.UDPStats) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FAMILY", "IN", "NO PORTS", "IN ERRORS", "OUT", "ADDRS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return statsHeaderStyle
			}
			return statsCellStyle
		})

	for _, f := range families {
		s, ok := stats[f]
		if !ok {
			continue
		}
		t.Row(
			f.String(),
			strconv.FormatUint(s.InDatagrams, 10),
			strconv.FormatUint(uint64(s.NoPorts), 10),
			strconv.FormatUint(uint64(s.InErrors), 10),
			strconv.FormatUint(s.OutDatagrams, 10),
			strconv.FormatUint(uint64(s.NumAddrs), 10),
		)
	}
	fmt.Fprintln(w, t.Render())
}
