package proc

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
	"github.com/prometheus/procfs"
)

// /proc/net/{udp,udp6} rows, after the header line:
//
//	sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
//	0:  0100007F:0035 00000000:0000 07 00000000:00000000 00:00000000 00000000     0        0 12345 ...
const (
	procNetFieldLocalAddr = 1
	procNetFieldInode     = 9
	procNetMinFields      = 10
)

type procNetFile struct {
	path   string
	family model.Family
}

var procNetUDPFiles = []procNetFile{
	{"net/udp", model.FamilyIPv4},
	{"net/udp6", model.FamilyIPv6},
}

// ProcNetSource reads UDP state from a procfs mount.
type ProcNetSource struct {
	root       string
	loadOwners func() (PIDMap, error)
	loadScopes func() (*ScopeTable, error)
}

// NewProcNetSource reads the procfs tree mounted at root.
func NewProcNetSource(root string) *ProcNetSource {
	return &ProcNetSource{
		root: root,
		loadOwners: func() (PIDMap, error) {
			fs, err := procfs.NewFS(root)
			if err != nil {
				return nil, err
			}
			return BuildPIDMap(fs)
		},
		loadScopes: loadScopeTable,
	}
}

func (s *ProcNetSource) Name() string { return "procfs" }

// Stats reads net/snmp for IPv4 and net/snmp6 for IPv6, as seen by the
// process reading them.
func (s *ProcNetSource) Stats(family model.Family) (model.UDPStats, error) {
	if !family.Valid() {
		return model.UDPStats{}, fmt.Errorf("%s: %w", family, nsi.ErrNotSupported)
	}
	fs, err := procfs.NewFS(s.root)
	if err != nil {
		return model.UDPStats{}, fmt.Errorf("procfs %s: %w", s.root, nsi.ErrNotSupported)
	}
	self, err := fs.Self()
	if err != nil {
		log.Debug("procfs self unavailable", "root", s.root, "err", err)
		return model.UDPStats{}, fmt.Errorf("procfs %s self: %w", s.root, nsi.ErrNotSupported)
	}
	return snmpStats(self, family)
}

// Endpoints walks net/udp then net/udp6.
func (s *ProcNetSource) Endpoints(opts EndpointOptions, fn func(model.Endpoint)) error {
	r := newResolvers(opts, s.loadOwners, s.loadScopes)

	usable := 0
	for _, pf := range procNetUDPFiles {
		path := filepath.Join(s.root, pf.path)
		f, err := os.Open(path)
		if err != nil {
			log.Debug("udp table unavailable", "path", path, "err", err)
			continue
		}
		usable++

		scanner := bufio.NewScanner(f)
		scanner.Scan() // skip header
		for scanner.Scan() {
			e, err := parseProcNetLine(scanner.Text(), pf.family)
			if err != nil {
				continue
			}
			r.resolve(&e)
			fn(e)
		}
		if err := scanner.Err(); err != nil {
			log.Debug("udp table truncated", "path", path, "err", err)
		}
		f.Close()
	}

	if usable == 0 {
		return fmt.Errorf("no udp tables under %s: %w", s.root, nsi.ErrNotSupported)
	}
	return nil
}

// ProcessName reads the command name of pid from procfs.
func (s *ProcNetSource) ProcessName(pid uint32) string {
	fs, err := procfs.NewFS(s.root)
	if err != nil {
		return ""
	}
	p, err := fs.Proc(int(pid))
	if err != nil {
		return ""
	}
	comm, err := p.Comm()
	if err != nil {
		return ""
	}
	return comm
}

// parseProcNetLine parses one row of net/udp or net/udp6.
func parseProcNetLine(line string, family model.Family) (model.Endpoint, error) {
	fields := strings.Fields(line)
	if len(fields) < procNetMinFields {
		return model.Endpoint{}, fmt.Errorf("too few fields: %d", len(fields))
	}
	if _, err := strconv.ParseUint(strings.TrimSuffix(fields[0], ":"), 10, 64); err != nil || !strings.HasSuffix(fields[0], ":") {
		return model.Endpoint{}, fmt.Errorf("bad slot %q", fields[0])
	}

	addr, port, err := parseProcAddr(fields[procNetFieldLocalAddr], family)
	if err != nil {
		return model.Endpoint{}, err
	}

	inode, err := strconv.ParseUint(fields[procNetFieldInode], 10, 64)
	if err != nil {
		return model.Endpoint{}, fmt.Errorf("bad inode: %w", err)
	}

	return model.Endpoint{
		Family: family,
		Addr:   addr,
		Port:   port,
		ConnID: strconv.FormatUint(inode, 10),
	}, nil
}

// parseProcAddr parses "HEXIP:HEXPORT". The address is printed as 32-bit
// words in host byte order: one word for IPv4, four for IPv6.
func parseProcAddr(s string, family model.Family) (netip.Addr, uint16, error) {
	ipHex, portHex, ok := strings.Cut(s, ":")
	if !ok {
		return netip.Addr{}, 0, fmt.Errorf("invalid address %q", s)
	}
	port, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return netip.Addr{}, 0, fmt.Errorf("invalid port %q: %w", portHex, err)
	}

	words := 1
	if family == model.FamilyIPv6 {
		words = 4
	}
	if len(ipHex) != words*8 {
		return netip.Addr{}, 0, fmt.Errorf("invalid %s address %q", family, ipHex)
	}
	if _, err := hex.DecodeString(ipHex); err != nil {
		return netip.Addr{}, 0, fmt.Errorf("invalid address hex: %w", err)
	}

	raw := make([]byte, words*4)
	for i := 0; i < words; i++ {
		w, _ := strconv.ParseUint(ipHex[i*8:(i+1)*8], 16, 32)
		binary.NativeEndian.PutUint32(raw[i*4:], uint32(w))
	}

	addr, _ := netip.AddrFromSlice(raw)
	return addr, uint16(port), nil
}
