//go:build darwin

package proc

import (
	"github.com/nsistat/udpstat/pkg/model"
)

// DefaultSource lists sockets with netstat, owners with lsof and counters
// with sysctl.
func DefaultSource(Options) Source {
	return newDarwinSource(execRunner)
}

func newDarwinSource(run Runner) *CommandSource {
	return &CommandSource{
		name: "netstat",
		run:  run,
		listings: []listing{
			{family: model.FamilyIPv4, name: "netstat", args: []string{"-an", "-f", "inet", "-p", "udp"}, parse: parseBSDNetstat},
			{family: model.FamilyIPv6, name: "netstat", args: []string{"-an", "-f", "inet6", "-p", "udp"}, parse: parseBSDNetstat},
		},
		owners: lsofOwners,
		stats:  sysctlUDPStats(darwinUDPStat),
		scopes: loadScopeTable,
	}
}
