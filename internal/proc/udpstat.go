package proc

import (
	"encoding/binary"
	"fmt"

	"github.com/nsistat/udpstat/pkg/model"
)

// udpstatLayout locates the counters of the kernel's struct udpstat. Fields
// are word sized and indexed in words.
type udpstatLayout struct {
	width    int
	ipackets int
	hdrops   int
	badsum   int
	badlen   int
	noport   int
	fullsock int
	opackets int
}

var (
	// FreeBSD keeps udpstat as uint64_t counters.
	freebsdUDPStat = udpstatLayout{width: 8, ipackets: 0, hdrops: 1, badsum: 2, badlen: 4, noport: 5, fullsock: 7, opackets: 10}
	// Darwin keeps udpstat as u_int32_t counters.
	darwinUDPStat = udpstatLayout{width: 4, ipackets: 0, hdrops: 1, badsum: 2, badlen: 3, noport: 4, fullsock: 6, opackets: 9}
)

func (l udpstatLayout) word(b []byte, i int) uint64 {
	off := i * l.width
	if l.width == 8 {
		return binary.NativeEndian.Uint64(b[off:])
	}
	return uint64(binary.NativeEndian.Uint32(b[off:]))
}

// decode maps a raw udpstat into the aggregate record. Input errors are
// header drops, bad checksums, full socket buffers and bad lengths.
func (l udpstatLayout) decode(b []byte) (model.UDPStats, error) {
	need := (l.opackets + 1) * l.width
	if len(b) < need {
		return model.UDPStats{}, fmt.Errorf("udpstat: %d bytes, want at least %d", len(b), need)
	}
	inErrs := l.word(b, l.hdrops) + l.word(b, l.badsum) + l.word(b, l.fullsock) + l.word(b, l.badlen)
	return model.UDPStats{
		InDatagrams:  l.word(b, l.ipackets),
		NoPorts:      uint32(l.word(b, l.noport)),
		InErrors:     uint32(inErrs),
		OutDatagrams: l.word(b, l.opackets),
	}, nil
}
