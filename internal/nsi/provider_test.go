package nsi

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testModule ModuleID = "test"
	rowsTable  TableID  = 7
	statsTable TableID  = 8
)

// rowsProvider serves a table of n rows; row i has key i and static i*10.
func rowsProvider(t *testing.T, n int) *Provider {
	t.Helper()
	p, err := NewProvider(Module{
		ID: testModule,
		Tables: []Table{
			{
				ID:    rowsTable,
				Sizes: Sizes{Key: 4, Static: 8},
				EnumerateAll: func(params *EnumParams) error {
					c := NewCursor(params)
					for i := 0; i < n; i++ {
						c.Emit(func(s Slot) {
							if s.Key != nil {
								binary.LittleEndian.PutUint32(s.Key, uint32(i))
							}
							if s.Static != nil {
								binary.LittleEndian.PutUint64(s.Static, uint64(i*10))
							}
						})
					}
					return c.Done()
				},
			},
			{
				ID:    statsTable,
				Sizes: Sizes{Key: 2, Dynamic: 8},
				GetAllParameters: func(key, rw, dynamic, static []byte) error {
					if key[0] != 1 {
						return ErrNotSupported
					}
					if len(dynamic) > 0 {
						binary.LittleEndian.PutUint64(dynamic, 0x0102030405060708)
					}
					return nil
				},
			},
		},
	})
	require.NoError(t, err)
	return p
}

func TestEnumerateCountOnly(t *testing.T) {
	p := rowsProvider(t, 5)

	params := &EnumParams{}
	require.NoError(t, p.EnumerateAll(testModule, rowsTable, params))
	assert.Equal(t, 5, params.Count)

	// Sizes without buffers are still a count-only query.
	params = &EnumParams{KeySize: 4, StaticSize: 8}
	require.NoError(t, p.EnumerateAll(testModule, rowsTable, params))
	assert.Equal(t, 5, params.Count)
}

func TestEnumerateEnoughCapacity(t *testing.T) {
	p := rowsProvider(t, 3)

	params := &EnumParams{
		Key: make([]byte, 4*4), KeySize: 4,
		Static: make([]byte, 4*8), StaticSize: 8,
		Count: 4,
	}
	require.NoError(t, p.EnumerateAll(testModule, rowsTable, params))
	assert.Equal(t, 3, params.Count)
	for i := 0; i < 3; i++ {
		assert.Equal(t, uint32(i), binary.LittleEndian.Uint32(params.Key[i*4:]))
		assert.Equal(t, uint64(i*10), binary.LittleEndian.Uint64(params.Static[i*8:]))
	}
	assert.Equal(t, make([]byte, 4), params.Key[12:], "unused slot untouched")
}

func TestEnumerateOverflow(t *testing.T) {
	p := rowsProvider(t, 5)

	keys := make([]byte, 2*4+4)
	for i := range keys {
		keys[i] = 0xee
	}
	params := &EnumParams{Key: keys[:8], KeySize: 4, Count: 2}
	err := p.EnumerateAll(testModule, rowsTable, params)
	require.ErrorIs(t, err, ErrBufferOverflow)
	assert.Equal(t, 5, params.Count, "count reports the true total")
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(keys[0:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(keys[4:]))
	assert.Equal(t, []byte{0xee, 0xee, 0xee, 0xee}, keys[8:], "nothing written past capacity")
}

func TestEnumerateNilBufferWithSize(t *testing.T) {
	p := rowsProvider(t, 2)

	params := &EnumParams{
		Key: make([]byte, 8), KeySize: 4,
		StaticSize: 8, // no buffer: static not populated
		Count:      2,
	}
	require.NoError(t, p.EnumerateAll(testModule, rowsTable, params))
	assert.Equal(t, 2, params.Count)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(params.Key[4:]))
}

func TestEnumerateValidation(t *testing.T) {
	p := rowsProvider(t, 2)

	err := p.EnumerateAll(testModule, rowsTable, &EnumParams{KeySize: 5})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	err = p.EnumerateAll(testModule, rowsTable, &EnumParams{Key: make([]byte, 4), KeySize: 4, Count: 2})
	assert.ErrorIs(t, err, ErrInvalidParameter, "buffer smaller than capacity")

	err = p.EnumerateAll(testModule, statsTable, &EnumParams{})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestUnknownTable(t *testing.T) {
	p := rowsProvider(t, 2)

	params := &EnumParams{Count: 0}
	err := p.EnumerateAll(testModule, 99, params)
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.Equal(t, 0, params.Count)

	err = p.GetAllParameters("tcp", statsTable, []byte{1, 0}, nil, make([]byte, 8), nil)
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestGetAllParameters(t *testing.T) {
	p := rowsProvider(t, 0)

	dyn := make([]byte, 8)
	require.NoError(t, p.GetAllParameters(testModule, statsTable, []byte{1, 0}, nil, dyn, nil))
	assert.Equal(t, uint64(0x0102030405060708), binary.LittleEndian.Uint64(dyn))

	// Zero-size dynamic buffer: nothing requested, nothing written.
	require.NoError(t, p.GetAllParameters(testModule, statsTable, []byte{1, 0}, nil, nil, nil))

	err := p.GetAllParameters(testModule, statsTable, []byte{1}, nil, dyn, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	err = p.GetAllParameters(testModule, statsTable, []byte{9, 0}, nil, dyn, nil)
	assert.ErrorIs(t, err, ErrNotSupported)

	err = p.GetAllParameters(testModule, rowsTable, make([]byte, 4), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestGetParameter(t *testing.T) {
	p := rowsProvider(t, 0)

	out := make([]byte, 2)
	require.NoError(t, p.GetParameter(testModule, statsTable, []byte{1, 0}, ParamDynamic, 2, out))
	assert.Equal(t, []byte{0x06, 0x05}, out)

	err := p.GetParameter(testModule, statsTable, []byte{1, 0}, ParamDynamic, 7, out)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	err = p.GetParameter(testModule, statsTable, []byte{1, 0}, ParamKind(9), 0, out)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNewProviderRejectsDuplicates(t *testing.T) {
	_, err := NewProvider(Module{ID: "x", Tables: []Table{{ID: 1}, {ID: 1}}})
	assert.Error(t, err)

	_, err = NewProvider(Module{ID: "x"}, Module{ID: "x"})
	assert.Error(t, err)
}

func TestCursorWants(t *testing.T) {
	c := NewCursor(&EnumParams{
		Key: make([]byte, 4), KeySize: 4,
		StaticSize: 8,
		Dynamic:    make([]byte, 8), DynamicSize: 0,
		Count: 1,
	})
	assert.True(t, c.WantKeys())
	assert.False(t, c.WantStatic(), "size without buffer")
	assert.False(t, c.WantDynamic(), "buffer without size")
	assert.False(t, c.WantRW())
}
