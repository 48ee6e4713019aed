package proc

import "net/netip"

type scopeEntry struct {
	prefix netip.Prefix
	scope  uint32
}

// ScopeTable holds the locally configured IPv6 addresses and their scope
// identifiers. A nil table resolves everything to the default scope.
type ScopeTable struct {
	entries []scopeEntry
}

// Add records a local address with its prefix length and scope.
func (t *ScopeTable) Add(prefix netip.Prefix, scope uint32) {
	t.entries = append(t.entries, scopeEntry{prefix: prefix, scope: scope})
}

// Len is the number of local entries.
func (t *ScopeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup returns the scope identifier for addr: 0 for the unspecified
// address, the scope nibble for multicast, otherwise the scope of the most
// specific local entry (the address itself, then the longest prefix that
// contains it), or 0 when nothing matches.
func (t *ScopeTable) Lookup(addr netip.Addr) uint32 {
	if !addr.IsValid() || addr.IsUnspecified() {
		return 0
	}
	if addr.Is6() && addr.IsMulticast() {
		b := addr.As16()
		return uint32(b[1] & 0x0f)
	}
	if t == nil {
		return 0
	}

	addr = addr.WithZone("")
	best, bestBits := uint32(0), -1
	for _, e := range t.entries {
		bits := -1
		switch {
		case e.prefix.Addr() == addr:
			bits = 129
		case e.prefix.Contains(addr):
			bits = e.prefix.Bits()
		}
		if bits > bestBits {
			best, bestBits = e.scope, bits
		}
	}
	return best
}

// scopeFor is the scope of a local address as the OS reports it: link-local
// addresses are scoped to their interface, everything else is global.
func scopeFor(addr netip.Addr, ifindex int) uint32 {
	if addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return uint32(ifindex)
	}
	return 0
}
