package model

import (
	"encoding/binary"
	"errors"
	"net/netip"
)

// Record sizes on the wire. Callers size their buffers with these.
const (
	StatsKeySize       = 2
	UDPStatsSize       = 48
	EndpointKeySize    = 28
	EndpointStaticSize = 32
)

var errShortRecord = errors.New("record shorter than its layout")

// EndpointKey is the key of the endpoint table.
//
// Layout: family u16 LE, port u16 BE, then for IPv4 the address and 20 zero
// bytes, for IPv6 flowinfo u32 (always 0), the address and scope id u32 LE.
type EndpointKey struct {
	Family  Family
	Addr    netip.Addr
	Port    uint16
	ScopeID uint32
}

// Put writes k into b, which must hold EndpointKeySize bytes.
func (k EndpointKey) Put(b []byte) {
	b = b[:EndpointKeySize]
	clear(b)
	binary.LittleEndian.PutUint16(b[0:], uint16(k.Family))
	binary.BigEndian.PutUint16(b[2:], k.Port)
	switch k.Family {
	case FamilyIPv4:
		a := k.Addr.Unmap()
		if a.Is4() {
			v4 := a.As4()
			copy(b[4:8], v4[:])
		}
	case FamilyIPv6:
		if k.Addr.IsValid() {
			v6 := k.Addr.As16()
			copy(b[8:24], v6[:])
		}
		binary.LittleEndian.PutUint32(b[24:], k.ScopeID)
	}
}

// DecodeEndpointKey is the inverse of Put.
func DecodeEndpointKey(b []byte) (EndpointKey, error) {
	if len(b) < EndpointKeySize {
		return EndpointKey{}, errShortRecord
	}
	k := EndpointKey{
		Family: Family(binary.LittleEndian.Uint16(b[0:])),
		Port:   binary.BigEndian.Uint16(b[2:]),
	}
	switch k.Family {
	case FamilyIPv4:
		k.Addr = netip.AddrFrom4([4]byte(b[4:8]))
	case FamilyIPv6:
		k.Addr = netip.AddrFrom16([16]byte(b[8:24]))
		k.ScopeID = binary.LittleEndian.Uint32(b[24:])
	}
	return k, nil
}

// EndpointStatic holds the rarely changing per-endpoint metadata.
type EndpointStatic struct {
	PID        uint32
	CreateTime uint64
	Flags      uint32
	ModInfo    uint64
}

func (s EndpointStatic) Put(b []byte) {
	b = b[:EndpointStaticSize]
	clear(b)
	binary.LittleEndian.PutUint32(b[0:], s.PID)
	binary.LittleEndian.PutUint64(b[8:], s.CreateTime)
	binary.LittleEndian.PutUint32(b[16:], s.Flags)
	binary.LittleEndian.PutUint64(b[24:], s.ModInfo)
}

func DecodeEndpointStatic(b []byte) (EndpointStatic, error) {
	if len(b) < EndpointStaticSize {
		return EndpointStatic{}, errShortRecord
	}
	return EndpointStatic{
		PID:        binary.LittleEndian.Uint32(b[0:]),
		CreateTime: binary.LittleEndian.Uint64(b[8:]),
		Flags:      binary.LittleEndian.Uint32(b[16:]),
		ModInfo:    binary.LittleEndian.Uint64(b[24:]),
	}, nil
}

// UDPStats is the per-family aggregate counter record.
type UDPStats struct {
	InDatagrams  uint64 `json:"in_datagrams"`
	NoPorts      uint32 `json:"no_ports"`
	InErrors     uint32 `json:"in_errors"`
	OutDatagrams uint64 `json:"out_datagrams"`
	NumAddrs     uint32 `json:"num_addrs"`
}

func (s UDPStats) Put(b []byte) {
	b = b[:UDPStatsSize]
	clear(b)
	binary.LittleEndian.PutUint64(b[0:], s.InDatagrams)
	binary.LittleEndian.PutUint32(b[8:], s.NoPorts)
	binary.LittleEndian.PutUint32(b[12:], s.InErrors)
	binary.LittleEndian.PutUint64(b[16:], s.OutDatagrams)
	binary.LittleEndian.PutUint32(b[24:], s.NumAddrs)
}

func DecodeUDPStats(b []byte) (UDPStats, error) {
	if len(b) < UDPStatsSize {
		return UDPStats{}, errShortRecord
	}
	return UDPStats{
		InDatagrams:  binary.LittleEndian.Uint64(b[0:]),
		NoPorts:      binary.LittleEndian.Uint32(b[8:]),
		InErrors:     binary.LittleEndian.Uint32(b[12:]),
		OutDatagrams: binary.LittleEndian.Uint64(b[16:]),
		NumAddrs:     binary.LittleEndian.Uint32(b[24:]),
	}, nil
}

// PutFamily writes the stats table key.
func PutFamily(b []byte, f Family) {
	binary.LittleEndian.PutUint16(b[:StatsKeySize], uint16(f))
}

// DecodeFamily reads the stats table key.
func DecodeFamily(b []byte) (Family, error) {
	if len(b) < StatsKeySize {
		return FamilyUnspec, errShortRecord
	}
	return Family(binary.LittleEndian.Uint16(b)), nil
}
