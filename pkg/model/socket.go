package model

import (
	"fmt"
	"net/netip"
)

// Family is the address family tag carried in keys.
type Family uint16

const (
	FamilyUnspec Family = 0
	FamilyIPv4   Family = 2
	FamilyIPv6   Family = 23
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", uint16(f))
	}
}

func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Family) UnmarshalText(b []byte) error {
	v, err := ParseFamily(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Valid reports whether f is one of the families the UDP tables serve.
func (f Family) Valid() bool {
	return f == FamilyIPv4 || f == FamilyIPv6
}

// ParseFamily accepts "4", "6", "ipv4", "ipv6", "inet", "inet6".
func ParseFamily(s string) (Family, error) {
	switch s {
	case "4", "ipv4", "inet", "udp", "udp4":
		return FamilyIPv4, nil
	case "6", "ipv6", "inet6", "udp6":
		return FamilyIPv6, nil
	}
	return FamilyUnspec, fmt.Errorf("unknown address family %q", s)
}

// Endpoint is one UDP socket as seen by a collector.
type Endpoint struct {
	Family  Family     `json:"family"`
	Addr    netip.Addr `json:"address"`
	Port    uint16     `json:"port"`
	ScopeID uint32     `json:"scope_id,omitempty"`

	// ConnID is the kernel connection identifier: the socket inode on
	// Linux, an "addr:port" pseudo-inode where the OS exposes none.
	ConnID string `json:"-"`

	PID        uint32 `json:"pid"`
	CreateTime uint64 `json:"create_time,omitempty"`
	Flags      uint32 `json:"flags,omitempty"`
	ModInfo    uint64 `json:"mod_info,omitempty"`
}

// Key returns the key record for e.
func (e Endpoint) Key() EndpointKey {
	return EndpointKey{Family: e.Family, Addr: e.Addr, Port: e.Port, ScopeID: e.ScopeID}
}

// Static returns the static record for e.
func (e Endpoint) Static() EndpointStatic {
	return EndpointStatic{PID: e.PID, CreateTime: e.CreateTime, Flags: e.Flags, ModInfo: e.ModInfo}
}

// AddrPort renders the local address the way sockets are usually printed.
func (e Endpoint) AddrPort() string {
	if !e.Addr.IsValid() {
		return fmt.Sprintf("*:%d", e.Port)
	}
	return netip.AddrPortFrom(e.Addr, e.Port).String()
}

// Protocol is "UDP" or "UDP6".
func (e Endpoint) Protocol() string {
	if e.Family == FamilyIPv6 {
		return "UDP6"
	}
	return "UDP"
}

// PseudoInode builds the connection identifier used by sources that have
// no kernel socket handle to offer.
func PseudoInode(addr netip.Addr, port uint16) string {
	return netip.AddrPortFrom(addr.Unmap().WithZone(""), port).String()
}
