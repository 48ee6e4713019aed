package proc

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
	"github.com/prometheus/procfs"
)

// snmpStats reads the UDP counters of the network namespace of self:
// net/snmp for IPv4, net/snmp6 for IPv6. Counters the kernel does not
// print stay zero.
func snmpStats(self procfs.Proc, family model.Family) (model.UDPStats, error) {
	switch family {
	case model.FamilyIPv4:
		snmp, err := self.Snmp()
		if err != nil {
			return model.UDPStats{}, snmpError("net/snmp", err)
		}
		u := snmp.Udp
		if u.InDatagrams == nil && u.NoPorts == nil && u.InErrors == nil && u.OutDatagrams == nil {
			return model.UDPStats{}, fmt.Errorf("no Udp section in net/snmp: %w", nsi.ErrNotSupported)
		}
		return udpStats(u.InDatagrams, u.NoPorts, u.InErrors, u.OutDatagrams), nil
	case model.FamilyIPv6:
		snmp6, err := self.Snmp6()
		if err != nil {
			return model.UDPStats{}, snmpError("net/snmp6", err)
		}
		u := snmp6.Udp6
		return udpStats(u.InDatagrams, u.NoPorts, u.InErrors, u.OutDatagrams), nil
	}
	return model.UDPStats{}, fmt.Errorf("%s: %w", family, nsi.ErrNotSupported)
}

func snmpError(file string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("udp counters unavailable", "file", file, "err", err)
		return fmt.Errorf("read %s: %w", file, nsi.ErrNotSupported)
	}
	return fmt.Errorf("read %s: %w", file, err)
}

func udpStats(in, noPorts, inErrs, out *float64) model.UDPStats {
	return model.UDPStats{
		InDatagrams:  counter(in),
		NoPorts:      uint32(counter(noPorts)),
		InErrors:     uint32(counter(inErrs)),
		OutDatagrams: counter(out),
	}
}

// counter converts a procfs counter; absent counters are zero.
func counter(v *float64) uint64 {
	if v == nil {
		return 0
	}
	return uint64(*v)
}
