package udp

import (
	"net/netip"
	"testing"

	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/internal/proc"
	"github.com/nsistat/udpstat/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves fixed endpoints; owners and scopes are only filled in
// when asked for, the way real sources resolve them.
type fakeSource struct {
	stats     map[model.Family]model.UDPStats
	endpoints []model.Endpoint
	owners    map[string]uint32
	scopes    map[netip.Addr]uint32
	err       error

	calls []proc.EndpointOptions
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Stats(family model.Family) (model.UDPStats, error) {
	s, ok := f.stats[family]
	if !ok {
		return model.UDPStats{}, nsi.ErrNotSupported
	}
	return s, nil
}

func (f *fakeSource) Endpoints(opts proc.EndpointOptions, fn func(model.Endpoint)) error {
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return f.err
	}
	for _, e := range f.endpoints {
		if opts.Owners {
			e.PID = f.owners[e.ConnID]
		}
		if opts.Scopes && e.Family == model.FamilyIPv6 {
			e.ScopeID = f.scopes[e.Addr]
		}
		fn(e)
	}
	return nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		stats: map[model.Family]model.UDPStats{
			model.FamilyIPv4: {InDatagrams: 100, OutDatagrams: 80, InErrors: 3, NoPorts: 2},
			model.FamilyIPv6: {InDatagrams: 7},
		},
		endpoints: []model.Endpoint{
			{Family: model.FamilyIPv4, Addr: netip.MustParseAddr("127.0.0.1"), Port: 53, ConnID: "100"},
			{Family: model.FamilyIPv4, Addr: netip.IPv4Unspecified(), Port: 68, ConnID: "101"},
			{Family: model.FamilyIPv4, Addr: netip.IPv4Unspecified(), Port: 123, ConnID: "102"},
			{Family: model.FamilyIPv4, Addr: netip.IPv4Unspecified(), Port: 5353, ConnID: "103"},
			{Family: model.FamilyIPv4, Addr: netip.MustParseAddr("10.0.0.2"), Port: 500, ConnID: "104"},
			{Family: model.FamilyIPv6, Addr: netip.MustParseAddr("fe80::1"), Port: 546, ConnID: "200"},
			{Family: model.FamilyIPv6, Addr: netip.IPv6Unspecified(), Port: 5353, ConnID: "201"},
		},
		owners: map[string]uint32{"100": 88, "200": 412},
		scopes: map[netip.Addr]uint32{netip.MustParseAddr("fe80::1"): 2},
	}
}

func newTestProvider(t *testing.T, src proc.Source) *nsi.Provider {
	t.Helper()
	p, err := NewProvider(src)
	require.NoError(t, err)
	return p
}

func TestStats(t *testing.T) {
	p := newTestProvider(t, newFakeSource())

	key := make([]byte, model.StatsKeySize)
	model.PutFamily(key, model.FamilyIPv4)
	dyn := make([]byte, model.UDPStatsSize)
	require.NoError(t, p.GetAllParameters(ModuleID, TableStats, key, nil, dyn, nil))

	got, err := model.DecodeUDPStats(dyn)
	require.NoError(t, err)
	assert.Equal(t, model.UDPStats{InDatagrams: 100, NoPorts: 2, InErrors: 3, OutDatagrams: 80, NumAddrs: 5}, got)

	model.PutFamily(key, model.FamilyIPv6)
	require.NoError(t, p.GetAllParameters(ModuleID, TableStats, key, nil, dyn, nil))
	got, _ = model.DecodeUDPStats(dyn)
	assert.Equal(t, uint32(2), got.NumAddrs, "addresses counted per family")
}

func TestStatsInvalidFamily(t *testing.T) {
	p := newTestProvider(t, newFakeSource())

	key := make([]byte, model.StatsKeySize)
	model.PutFamily(key, model.Family(99))
	err := p.GetAllParameters(ModuleID, TableStats, key, nil, make([]byte, model.UDPStatsSize), nil)
	assert.ErrorIs(t, err, nsi.ErrNotSupported)
}

func TestStatsEndpointSourceFails(t *testing.T) {
	src := newFakeSource()
	src.err = nsi.ErrNotSupported
	p := newTestProvider(t, src)

	key := make([]byte, model.StatsKeySize)
	model.PutFamily(key, model.FamilyIPv4)
	dyn := make([]byte, model.UDPStatsSize)
	require.NoError(t, p.GetAllParameters(ModuleID, TableStats, key, nil, dyn, nil))
	got, _ := model.DecodeUDPStats(dyn)
	assert.Equal(t, uint64(100), got.InDatagrams)
	assert.Zero(t, got.NumAddrs)
}

func TestEndpointsTwoPhase(t *testing.T) {
	src := newFakeSource()
	p := newTestProvider(t, src)

	params := &nsi.EnumParams{}
	require.NoError(t, p.EnumerateAll(ModuleID, TableEndpoints, params))
	require.Equal(t, 7, params.Count)
	assert.Equal(t, proc.EndpointOptions{}, src.calls[0], "count-only pass resolves nothing")

	n := params.Count
	params = &nsi.EnumParams{
		Key: make([]byte, n*model.EndpointKeySize), KeySize: model.EndpointKeySize,
		Static: make([]byte, n*model.EndpointStaticSize), StaticSize: model.EndpointStaticSize,
		Count: n,
	}
	require.NoError(t, p.EnumerateAll(ModuleID, TableEndpoints, params))
	assert.Equal(t, 7, params.Count)
	assert.Equal(t, proc.EndpointOptions{Scopes: true, Owners: true}, src.calls[1])

	var keys []model.EndpointKey
	for i := 0; i < n; i++ {
		k, err := model.DecodeEndpointKey(params.Key[i*model.EndpointKeySize:])
		require.NoError(t, err)
		keys = append(keys, k)
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, model.FamilyIPv4, keys[i].Family)
	}
	assert.Equal(t, model.FamilyIPv6, keys[5].Family)
	assert.Equal(t, uint32(2), keys[5].ScopeID)
	assert.Equal(t, uint16(53), keys[0].Port)

	st, err := model.DecodeEndpointStatic(params.Static)
	require.NoError(t, err)
	assert.Equal(t, uint32(88), st.PID)
	st, _ = model.DecodeEndpointStatic(params.Static[1*model.EndpointStaticSize:])
	assert.Equal(t, proc.UnknownPID, st.PID, "no owner")
	st, _ = model.DecodeEndpointStatic(params.Static[5*model.EndpointStaticSize:])
	assert.Equal(t, uint32(412), st.PID)
}

func TestEndpointsKeysOnlySkipsOwners(t *testing.T) {
	src := newFakeSource()
	p := newTestProvider(t, src)

	params := &nsi.EnumParams{
		Key: make([]byte, 7*model.EndpointKeySize), KeySize: model.EndpointKeySize,
		StaticSize: model.EndpointStaticSize,
		Count:      7,
	}
	require.NoError(t, p.EnumerateAll(ModuleID, TableEndpoints, params))
	assert.Equal(t, proc.EndpointOptions{Scopes: true}, src.calls[0])
}

func TestEndpointsOverflow(t *testing.T) {
	p := newTestProvider(t, newFakeSource())

	params := &nsi.EnumParams{
		Key: make([]byte, 3*model.EndpointKeySize), KeySize: model.EndpointKeySize,
		Count: 3,
	}
	err := p.EnumerateAll(ModuleID, TableEndpoints, params)
	require.ErrorIs(t, err, nsi.ErrBufferOverflow)
	assert.Equal(t, 7, params.Count)

	k, err := model.DecodeEndpointKey(params.Key[2*model.EndpointKeySize:])
	require.NoError(t, err)
	assert.Equal(t, uint16(123), k.Port, "written slots are complete")
}

func TestEndpointsAllSourcesFail(t *testing.T) {
	src := newFakeSource()
	src.err = nsi.ErrNotSupported
	p := newTestProvider(t, src)

	params := &nsi.EnumParams{Count: 4, Key: make([]byte, 4*model.EndpointKeySize), KeySize: model.EndpointKeySize}
	err := p.EnumerateAll(ModuleID, TableEndpoints, params)
	assert.ErrorIs(t, err, nsi.ErrNotSupported)
	assert.Equal(t, 0, params.Count)
}

func TestNoSource(t *testing.T) {
	p := newTestProvider(t, nil)

	err := p.EnumerateAll(ModuleID, TableEndpoints, &nsi.EnumParams{})
	assert.ErrorIs(t, err, nsi.ErrNotImplemented)

	key := make([]byte, model.StatsKeySize)
	model.PutFamily(key, model.FamilyIPv4)
	err = p.GetAllParameters(ModuleID, TableStats, key, nil, make([]byte, model.UDPStatsSize), nil)
	assert.ErrorIs(t, err, nsi.ErrNotImplemented)
}

func TestTableLayouts(t *testing.T) {
	p := newTestProvider(t, nil)

	stats, err := p.Table(ModuleID, TableStats)
	require.NoError(t, err)
	assert.Equal(t, nsi.Sizes{Key: 2, Dynamic: 48}, stats.Sizes)

	eps, err := p.Table(ModuleID, TableEndpoints)
	require.NoError(t, err)
	assert.Equal(t, nsi.Sizes{Key: 28, Static: 32}, eps.Sizes)
}
