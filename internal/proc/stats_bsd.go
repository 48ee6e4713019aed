//go:build darwin || freebsd

package proc

import (
	"errors"
	"fmt"

	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
	"golang.org/x/sys/unix"
)

// sysctlUDPStats reads net.inet.udp.stats. The kernel keeps one set of
// counters for both families.
func sysctlUDPStats(layout udpstatLayout) func(Runner, model.Family) (model.UDPStats, error) {
	return func(_ Runner, family model.Family) (model.UDPStats, error) {
		b, err := unix.SysctlRaw("net.inet.udp.stats")
		if err != nil {
			if errors.Is(err, unix.ENOMEM) {
				return model.UDPStats{}, fmt.Errorf("sysctl net.inet.udp.stats: %w", nsi.ErrNoMemory)
			}
			return model.UDPStats{}, fmt.Errorf("sysctl net.inet.udp.stats: %w: %w", nsi.ErrNotSupported, err)
		}
		return layout.decode(b)
	}
}
