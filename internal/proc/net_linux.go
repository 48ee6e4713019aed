//go:build linux

package proc

import (
	"fmt"
	"net/netip"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// DefaultSource reads /proc (or opts.ProcRoot).
func DefaultSource(opts Options) Source {
	root := opts.ProcRoot
	if root == "" {
		root = "/proc"
	}
	return NewProcNetSource(root)
}

// loadScopeTable dumps the IPv6 addresses of every link over rtnetlink.
func loadScopeTable() (*ScopeTable, error) {
	addrs, err := netlink.AddrList(nil, netlink.FAMILY_V6)
	if err != nil {
		return nil, fmt.Errorf("list ipv6 addresses: %w", err)
	}

	t := &ScopeTable{}
	for _, a := range addrs {
		if a.IPNet == nil {
			continue
		}
		addr, ok := netip.AddrFromSlice(a.IP)
		if !ok {
			continue
		}
		ones, _ := a.Mask.Size()
		scope := scopeFor(addr, a.LinkIndex)
		if a.Scope == unix.RT_SCOPE_LINK {
			scope = uint32(a.LinkIndex)
		}
		t.Add(netip.PrefixFrom(addr.WithZone(""), ones), scope)
	}
	return t, nil
}
