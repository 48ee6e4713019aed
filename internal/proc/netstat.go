package proc

import (
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
)

// localAddr is a parsed local socket address.
type localAddr struct {
	addr  netip.Addr
	port  uint16
	scope uint32
}

func (a localAddr) endpoint(family model.Family) model.Endpoint {
	return model.Endpoint{
		Family:  family,
		Addr:    a.addr,
		Port:    a.port,
		ScopeID: a.scope,
		ConnID:  model.PseudoInode(a.addr, a.port),
	}
}

// parseNetstatAddr parses the local address column of netstat, sockstat and
// lsof: "*.5353", "*:5353", "127.0.0.1.53", "127.0.0.1:53", "[::1]:53",
// "::1.53", "fe80::1%lo0.546" or "[fe80::1%5]:546". A wildcard host is the
// unspecified address of family.
func parseNetstatAddr(s string, family model.Family) (localAddr, bool) {
	var host, portStr string
	if strings.HasPrefix(s, "[") {
		end := strings.LastIndex(s, "]")
		if end == -1 || end+2 > len(s) || (s[end+1] != ':' && s[end+1] != '.') {
			return localAddr{}, false
		}
		host, portStr = s[1:end], s[end+2:]
	} else {
		i := strings.LastIndexAny(s, ":.")
		if i == -1 {
			return localAddr{}, false
		}
		host, portStr = s[:i], s[i+1:]
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return localAddr{}, false
	}

	if host == "*" || host == "" {
		return localAddr{addr: unspecified(family), port: uint16(port)}, true
	}

	host, zone, _ := strings.Cut(host, "%")
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return localAddr{}, false
	}
	switch {
	case family == model.FamilyIPv4 && addr.Is4In6():
		addr = addr.Unmap()
	case family == model.FamilyIPv4 && !addr.Is4():
		return localAddr{}, false
	case family == model.FamilyIPv6 && addr.Is4():
		addr = netip.AddrFrom16(addr.As16())
	}
	return localAddr{addr: addr, port: uint16(port), scope: zoneIndex(zone)}, true
}

func unspecified(family model.Family) netip.Addr {
	if family == model.FamilyIPv6 {
		return netip.IPv6Unspecified()
	}
	return netip.IPv4Unspecified()
}

// zoneIndex turns an address zone into an interface index. Windows prints
// the index itself, the BSDs print the interface name.
func zoneIndex(zone string) uint32 {
	if zone == "" {
		return 0
	}
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n)
	}
	ifi, err := net.InterfaceByName(zone)
	if err != nil {
		return 0
	}
	return uint32(ifi.Index)
}

// bsdProtoFamily is the family a BSD protocol column belongs to.
// Dual-stack sockets (udp46) are reported with the IPv6 table.
func bsdProtoFamily(proto string) model.Family {
	switch strings.ToLower(proto) {
	case "udp4", "udp":
		return model.FamilyIPv4
	case "udp6", "udp46":
		return model.FamilyIPv6
	}
	return model.FamilyUnspec
}

// parseBSDNetstat parses `netstat -an -f inet[6] -p udp` on Darwin and
// FreeBSD:
//
//	Proto Recv-Q Send-Q  Local Address          Foreign Address        (state)
//	udp4       0      0  127.0.0.1.53           *.*
func parseBSDNetstat(out []byte, family model.Family) []model.Endpoint {
	var eps []model.Endpoint
	for line := range strings.Lines(string(out)) {
		fields := strings.Fields(line)
		if len(fields) < 5 || bsdProtoFamily(fields[0]) != family {
			continue
		}
		a, ok := parseNetstatAddr(fields[3], family)
		if !ok {
			continue
		}
		eps = append(eps, a.endpoint(family))
	}
	return eps
}

// parseLsofOwners parses `lsof -nP -iUDP -F ptn`: a "p<pid>" line starts a
// process, then each file has a "t<type>" and an "n<name>" line.
func parseLsofOwners(out []byte) PIDMap {
	m := make(PIDMap)
	var (
		pid    uint32
		family model.Family
	)
	for line := range strings.Lines(string(out)) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		switch line[0] {
		case 'p':
			v, err := strconv.ParseUint(line[1:], 10, 32)
			if err != nil {
				pid = 0
				continue
			}
			pid = uint32(v)
		case 't':
			switch line[1:] {
			case "IPv4":
				family = model.FamilyIPv4
			case "IPv6":
				family = model.FamilyIPv6
			default:
				family = model.FamilyUnspec
			}
		case 'n':
			if pid == 0 || family == model.FamilyUnspec {
				continue
			}
			local, _, _ := strings.Cut(line[1:], "->")
			if a, ok := parseNetstatAddr(local, family); ok {
				m.add(model.PseudoInode(a.addr, a.port), pid)
			}
		}
	}
	return m
}

// parseSockstatOwners parses `sockstat -46 -P udp`:
//
//	USER     COMMAND    PID   FD  PROTO  LOCAL ADDRESS         FOREIGN ADDRESS
//	root     syslogd    412   6   udp4   *:514                 *:*
func parseSockstatOwners(out []byte) PIDMap {
	m := make(PIDMap)
	for line := range strings.Lines(string(out)) {
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[0] == "USER" {
			continue
		}
		pid, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			continue
		}
		family := bsdProtoFamily(fields[4])
		if family == model.FamilyUnspec {
			continue
		}
		if a, ok := parseNetstatAddr(fields[5], family); ok {
			m.add(model.PseudoInode(a.addr, a.port), uint32(pid))
		}
	}
	return m
}

// parseWindowsNetstat parses `netstat -ano -p UDP` and `-p UDPv6`:
//
//	Proto  Local Address          Foreign Address        State           PID
//	UDP    0.0.0.0:123            *:*                                    1234
//	UDP    [fe80::1%5]:546        *:*                                    992
//
// The owning PID comes with the listing.
func parseWindowsNetstat(out []byte, family model.Family) []model.Endpoint {
	var eps []model.Endpoint
	for line := range strings.Lines(string(out)) {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.HasPrefix(strings.ToUpper(fields[0]), "UDP") {
			continue
		}
		local := fields[1]
		if strings.HasPrefix(local, "[") != (family == model.FamilyIPv6) {
			continue
		}
		a, ok := parseNetstatAddr(local, family)
		if !ok {
			continue
		}
		e := a.endpoint(family)
		if len(fields) >= 4 {
			if pid, err := strconv.ParseUint(fields[len(fields)-1], 10, 32); err == nil {
				e.PID = uint32(pid)
			}
		}
		eps = append(eps, e)
	}
	return eps
}

// parseWindowsUDPStats parses the UDP section of `netstat -s -p UDP`:
//
//	Datagrams Received    = 1200
//	No Ports              = 15
//	Receive Errors        = 0
//	Datagrams Sent        = 980
func parseWindowsUDPStats(out []byte) (model.UDPStats, error) {
	var (
		stats model.UDPStats
		found bool
	)
	for line := range strings.Lines(string(out)) {
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "datagrams received":
			stats.InDatagrams = v
		case "no ports":
			stats.NoPorts = uint32(v)
		case "receive errors":
			stats.InErrors = uint32(v)
		case "datagrams sent":
			stats.OutDatagrams = v
		default:
			continue
		}
		found = true
	}
	if !found {
		return model.UDPStats{}, nsi.ErrNotSupported
	}
	return stats, nil
}

func lsofOwners(run Runner) (PIDMap, error) {
	out, err := run("lsof", "-nP", "-iUDP", "-F", "ptn")
	if err != nil && len(out) == 0 {
		// lsof exits 1 when nothing matched
		return nil, err
	}
	return parseLsofOwners(out), nil
}

func sockstatOwners(run Runner) (PIDMap, error) {
	out, err := run("sockstat", "-46", "-P", "udp")
	if err != nil {
		return nil, err
	}
	return parseSockstatOwners(out), nil
}
