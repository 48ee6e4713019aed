package output

import (
	"fmt"
	"io"

	"github.com/nsistat/udpstat/pkg/model"
)

var (
	colorResetShort   = "\033[0m"
	colorMagentaShort = "\033[35m"
	colorBoldShort    = "\033[2m"
	colorGreenShort   = "\033[32m"
)

// RenderShort prints one line per endpoint: protocol, local address, owner.
func RenderShort(w io.Writer, eps []model.Endpoint, colorEnabled bool) {
	for _, e := range eps {
		owner := "-"
		if e.PID != 0 {
			owner = fmt.Sprintf("pid %d", e.PID)
		}
		if colorEnabled {
			fmt.Fprintf(w, "%s%-5s%s %s%-46s%s %s%s%s\n",
				colorMagentaShort, e.Protocol(), colorResetShort,
				colorGreenShort, e.AddrPort(), colorResetShort,
				colorBoldShort, owner, colorResetShort)
		} else {
			fmt.Fprintf(w, "%-5s %-46s %s\n", e.Protocol(), e.AddrPort(), owner)
		}
	}
}
