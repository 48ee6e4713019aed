//go:build windows

package proc

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
)

// DefaultSource lists sockets and their owners with netstat -ano and reads
// counters from netstat -s.
func DefaultSource(Options) Source {
	return &CommandSource{
		name: "netstat",
		run:  execRunner,
		listings: []listing{
			{family: model.FamilyIPv4, name: "netstat", args: []string{"-ano", "-p", "UDP"}, parse: parseWindowsNetstat},
			{family: model.FamilyIPv6, name: "netstat", args: []string{"-ano", "-p", "UDPv6"}, parse: parseWindowsNetstat},
		},
		stats:  windowsUDPStats,
		scopes: loadScopeTable,
		comm:   tasklistName,
	}
}

func windowsUDPStats(run Runner, family model.Family) (model.UDPStats, error) {
	proto := "UDP"
	if family == model.FamilyIPv6 {
		proto = "UDPv6"
	}
	out, err := run("netstat", "-s", "-p", proto)
	if err != nil {
		return model.UDPStats{}, nsi.ErrNotSupported
	}
	return parseWindowsUDPStats(out)
}

// tasklistName asks tasklist for the image name of pid.
func tasklistName(run Runner, pid uint32) string {
	out, err := run("tasklist", "/FI", "PID eq "+strconv.FormatUint(uint64(pid), 10), "/FO", "CSV", "/NH")
	if err != nil {
		return ""
	}
	rec, err := csv.NewReader(strings.NewReader(string(out))).Read()
	if err != nil || len(rec) < 2 {
		return ""
	}
	return rec[0]
}
