package output

import (
	"fmt"
	"io"
	"slices"

	"github.com/nsistat/udpstat/pkg/model"
	"github.com/samber/lo"
)

var (
	colorResetTree   = "\033[0m"
	colorMagentaTree = "\033[35m"
	colorGreenTree   = "\033[32m"
	colorBoldTree    = "\033[2m"
)

// treeLimit is how many endpoints are listed under one process.
const treeLimit = 10

// PrintTree groups endpoints under their owning process. Processes are in
// PID order with unowned endpoints last; name maps a PID to a command name
// and may be nil.
func PrintTree(w io.Writer, eps []model.Endpoint, name func(uint32) string, colorEnabled bool) {
	colorReset := ""
	colorMagenta := ""
	colorGreen := ""
	colorBold := ""
	if colorEnabled {
		colorReset = colorResetTree
		colorMagenta = colorMagentaTree
		colorGreen = colorGreenTree
		colorBold = colorBoldTree
	}

	groups := lo.GroupBy(eps, func(e model.Endpoint) uint32 { return e.PID })
	pids := lo.Keys(groups)
	slices.SortFunc(pids, func(a, b uint32) int {
		switch {
		case a == b:
			return 0
		case a == 0:
			return 1
		case b == 0:
			return -1
		case a < b:
			return -1
		}
		return 1
	})

	for _, pid := range pids {
		if pid == 0 {
			fmt.Fprintf(w, "%sunknown owner%s\n", colorBold, colorReset)
		} else {
			command := ""
			if name != nil {
				command = name(pid)
			}
			if command == "" {
				command = "?"
			}
			fmt.Fprintf(w, "%s%s%s (%spid %d%s)\n", colorGreen, command, colorReset, colorBold, pid, colorReset)
		}

		children := groups[pid]
		count := len(children)
		for i, e := range children {
			if i >= treeLimit {
				fmt.Fprintf(w, "  %s└─ %s... and %d more\n", colorMagenta, colorReset, count-treeLimit)
				break
			}
			connector := "├─ "
			if i == count-1 || (i == treeLimit-1 && count <= treeLimit) {
				connector = "└─ "
			}
			fmt.Fprintf(w, "  %s%s%s%-5s %s\n", colorMagenta, connector, colorReset, e.Protocol(), e.AddrPort())
		}
	}
}
