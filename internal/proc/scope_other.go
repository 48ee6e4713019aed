//go:build !linux

package proc

import (
	"fmt"
	"net"
	"net/netip"
)

// loadScopeTable collects the IPv6 addresses of every interface.
func loadScopeTable() (*ScopeTable, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	t := &ScopeTable{}
	for _, ifi := range ifaces {
		addrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok || ipnet.IP.To4() != nil {
				continue
			}
			addr, ok := netip.AddrFromSlice(ipnet.IP)
			if !ok {
				continue
			}
			ones, _ := ipnet.Mask.Size()
			t.Add(netip.PrefixFrom(addr, ones), scopeFor(addr, ifi.Index))
		}
	}
	return t, nil
}
