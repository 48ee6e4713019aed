package proc

import (
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	procNetUDPHeader = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode ref pointer drops\n"
	procNetUDPv4     = procNetUDPHeader +
		"  331: 0100007F:0035 00000000:0000 07 00000000:00000000 00:00000000 00000000     0        0 12345 2 0000000000000000 0\n" +
		"  not a row\n" +
		"  512: 00000000:14E9 00000000:0000 07 00000000:00000000 00:00000000 00000000   101        0 777 2 0000000000000000 0\n"
	procNetUDPv6 = procNetUDPHeader +
		"  100: 00000000000000000000000001000000:0223 00000000000000000000000000000000:0000 07 00000000:00000000 00:00000000 00000000     0        0 888 2 0000000000000000 0\n" +
		"  101: 000080FE00000000FF000002010000FE:0222 00000000000000000000000000000000:0000 07 00000000:00000000 00:00000000 00000000     0        0 999 2 0000000000000000 0\n"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func socketLink(t *testing.T, root string, pid, fd int, target string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid), "fd")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, strconv.Itoa(fd))))
}

// selfNet points root/self at a fake process and returns its net directory.
func selfNet(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "1", "net")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.Symlink("1", filepath.Join(root, "self")))
	return dir
}

func collect(t *testing.T, s Source, opts EndpointOptions) []model.Endpoint {
	t.Helper()
	var eps []model.Endpoint
	require.NoError(t, s.Endpoints(opts, func(e model.Endpoint) { eps = append(eps, e) }))
	return eps
}

func TestProcNetEndpoints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "net/udp"), procNetUDPv4)
	writeFile(t, filepath.Join(root, "net/udp6"), procNetUDPv6)

	s := NewProcNetSource(root)
	eps := collect(t, s, EndpointOptions{})
	require.Len(t, eps, 4, "malformed row skipped")

	assert.Equal(t, model.FamilyIPv4, eps[0].Family)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), eps[0].Addr)
	assert.Equal(t, uint16(53), eps[0].Port)
	assert.Equal(t, "12345", eps[0].ConnID)
	assert.Equal(t, uint16(5353), eps[1].Port)
	assert.True(t, eps[1].Addr.IsUnspecified())

	assert.Equal(t, model.FamilyIPv6, eps[2].Family)
	assert.Equal(t, netip.MustParseAddr("::1"), eps[2].Addr)
	assert.Equal(t, uint16(547), eps[2].Port)
	assert.Equal(t, netip.MustParseAddr("fe80::200:ff:fe00:1"), eps[3].Addr)

	for _, e := range eps {
		assert.Zero(t, e.PID, "owners not requested")
		assert.Zero(t, e.ScopeID, "scopes not requested")
	}
}

func TestProcNetEndpointsResolvers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "net/udp"), procNetUDPv4)
	writeFile(t, filepath.Join(root, "net/udp6"), procNetUDPv6)
	socketLink(t, root, 42, 3, "socket:[12345]")
	socketLink(t, root, 7, 4, "socket:[12345]")
	socketLink(t, root, 42, 5, "/dev/null")
	socketLink(t, root, 9, 3, "socket:[999]")

	s := NewProcNetSource(root)
	scopeLoads := 0
	s.loadScopes = func() (*ScopeTable, error) {
		scopeLoads++
		tbl := &ScopeTable{}
		tbl.Add(netip.MustParsePrefix("fe80::200:ff:fe00:1/64"), 3)
		return tbl, nil
	}

	eps := collect(t, s, EndpointOptions{Scopes: true, Owners: true})
	require.Len(t, eps, 4)
	assert.Equal(t, uint32(7), eps[0].PID, "lowest pid holding the inode")
	assert.Equal(t, UnknownPID, eps[1].PID, "no process holds inode 777")
	assert.Equal(t, UnknownPID, eps[2].PID)
	assert.Equal(t, uint32(9), eps[3].PID)

	assert.Zero(t, eps[2].ScopeID)
	assert.Equal(t, uint32(3), eps[3].ScopeID)
	assert.Equal(t, 1, scopeLoads)
}

func TestProcNetEndpointsMissingTables(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "net/udp6"), procNetUDPv6)

	eps := collect(t, NewProcNetSource(root), EndpointOptions{})
	require.Len(t, eps, 2)
	assert.Equal(t, model.FamilyIPv6, eps[0].Family)

	err := NewProcNetSource(t.TempDir()).Endpoints(EndpointOptions{}, func(model.Endpoint) {})
	assert.ErrorIs(t, err, nsi.ErrNotSupported)
}

func TestProcNetStats(t *testing.T) {
	root := t.TempDir()
	net := selfNet(t, root)
	writeFile(t, filepath.Join(net, "snmp"), ""+
		"Ip: Forwarding DefaultTTL\n"+
		"Ip: 1 64\n"+
		"Udp: InDatagrams NoPorts InErrors OutDatagrams RcvbufErrors SndbufErrors InCsumErrors IgnoredMulti MemErrors\n"+
		"Udp: 100 2 3 80 0 0 0 0 0\n"+
		"UdpLite: InDatagrams NoPorts InErrors OutDatagrams\n"+
		"UdpLite: 9 9 9 9\n")
	writeFile(t, filepath.Join(net, "snmp6"), ""+
		"Ip6InReceives                   	1000\n"+
		"Udp6InDatagrams                 	40\n"+
		"Udp6NoPorts                     	1\n"+
		"Udp6InErrors                    	0\n"+
		"Udp6OutDatagrams                	38\n"+
		"UdpLite6InDatagrams             	7\n")

	s := NewProcNetSource(root)
	v4, err := s.Stats(model.FamilyIPv4)
	require.NoError(t, err)
	assert.Equal(t, model.UDPStats{InDatagrams: 100, NoPorts: 2, InErrors: 3, OutDatagrams: 80}, v4)

	v6, err := s.Stats(model.FamilyIPv6)
	require.NoError(t, err)
	assert.Equal(t, model.UDPStats{InDatagrams: 40, NoPorts: 1, OutDatagrams: 38}, v6)

	_, err = s.Stats(model.Family(99))
	assert.ErrorIs(t, err, nsi.ErrNotSupported)

	_, err = NewProcNetSource(t.TempDir()).Stats(model.FamilyIPv4)
	assert.ErrorIs(t, err, nsi.ErrNotSupported, "no self link")

	_, err = NewProcNetSource(filepath.Join(t.TempDir(), "missing")).Stats(model.FamilyIPv4)
	assert.ErrorIs(t, err, nsi.ErrNotSupported, "no procfs")
}

func TestProcNetStatsMissingCounters(t *testing.T) {
	root := t.TempDir()
	net := selfNet(t, root)
	writeFile(t, filepath.Join(net, "snmp"), "Ip: Forwarding\nIp: 1\n")

	s := NewProcNetSource(root)
	_, err := s.Stats(model.FamilyIPv4)
	assert.ErrorIs(t, err, nsi.ErrNotSupported, "no Udp section")

	_, err = s.Stats(model.FamilyIPv6)
	assert.ErrorIs(t, err, nsi.ErrNotSupported, "no snmp6 file")

	writeFile(t, filepath.Join(net, "snmp6"), "Udp6InDatagrams 5\n")
	v6, err := s.Stats(model.FamilyIPv6)
	require.NoError(t, err)
	assert.Equal(t, model.UDPStats{InDatagrams: 5}, v6)
}

func TestProcNetStatsLargeCounters(t *testing.T) {
	root := t.TempDir()
	net := selfNet(t, root)
	writeFile(t, filepath.Join(net, "snmp"), ""+
		"Udp: InDatagrams NoPorts InErrors OutDatagrams\n"+
		"Udp: 4294967296 7 0 8589934592\n")

	v4, err := NewProcNetSource(root).Stats(model.FamilyIPv4)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<32, v4.InDatagrams)
	assert.Equal(t, uint64(1)<<33, v4.OutDatagrams)
	assert.Equal(t, uint32(7), v4.NoPorts)
}

func TestParseProcNetLine(t *testing.T) {
	e, err := parseProcNetLine("0: 0100007F:0035 00000000:0000 07 0 0 0 0 0 1", model.FamilyIPv4)
	require.NoError(t, err)
	assert.Equal(t, "1", e.ConnID)

	_, err = parseProcNetLine("x: 0100007F:0035 00000000:0000 07 0 0 0 0 0 1", model.FamilyIPv4)
	assert.Error(t, err, "bad slot")

	_, err = parseProcNetLine("0: 0100007F 00000000:0000 07 0 0 0 0 0 1", model.FamilyIPv4)
	assert.Error(t, err, "missing port")

	_, err = parseProcNetLine("0: 0100007F:0035 00000000:0000 07 0 0 0 0 0 x", model.FamilyIPv4)
	assert.Error(t, err, "bad inode")

	_, err = parseProcNetLine("0: 0100007F:0035 00000000:0000 07 0 0 0 0 0 1", model.FamilyIPv6)
	assert.Error(t, err, "short ipv6 address")
}
