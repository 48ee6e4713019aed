package proc

import (
	"encoding/binary"
	"testing"

	"github.com/nsistat/udpstat/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawUDPStat(l udpstatLayout, words int, set map[int]uint64) []byte {
	b := make([]byte, words*l.width)
	for i, v := range set {
		if l.width == 8 {
			binary.NativeEndian.PutUint64(b[i*8:], v)
		} else {
			binary.NativeEndian.PutUint32(b[i*4:], uint32(v))
		}
	}
	return b
}

func TestDecodeUDPStat(t *testing.T) {
	want := model.UDPStats{InDatagrams: 100, NoPorts: 2, InErrors: 10, OutDatagrams: 80}

	fb := rawUDPStat(freebsdUDPStat, 16, map[int]uint64{0: 100, 1: 1, 2: 2, 4: 3, 5: 2, 7: 4, 10: 80})
	got, err := freebsdUDPStat.decode(fb)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	db := rawUDPStat(darwinUDPStat, 16, map[int]uint64{0: 100, 1: 1, 2: 2, 3: 3, 4: 2, 6: 4, 9: 80})
	got, err = darwinUDPStat.decode(db)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = freebsdUDPStat.decode(fb[:40])
	assert.Error(t, err)
}
