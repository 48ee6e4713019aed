//go:build freebsd

package proc

import (
	"github.com/nsistat/udpstat/pkg/model"
)

// DefaultSource lists sockets with netstat, owners with sockstat and
// counters with sysctl.
func DefaultSource(Options) Source {
	return &CommandSource{
		name: "netstat",
		run:  execRunner,
		listings: []listing{
			{family: model.FamilyIPv4, name: "netstat", args: []string{"-an", "-f", "inet", "-p", "udp"}, parse: parseBSDNetstat},
			{family: model.FamilyIPv6, name: "netstat", args: []string{"-an", "-f", "inet6", "-p", "udp"}, parse: parseBSDNetstat},
		},
		owners: sockstatOwners,
		stats:  sysctlUDPStats(freebsdUDPStat),
		scopes: loadScopeTable,
	}
}
