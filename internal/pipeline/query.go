package pipeline

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/internal/udp"
	"github.com/nsistat/udpstat/pkg/model"
)

// maxRetries bounds how often a fill pass is repeated when the table grew
// between sizing and filling.
const maxRetries = 3

// slack is the spare capacity added to a sized buffer.
func slack(n int) int { return n + n/8 + 1 }

// QueryEndpoints reads the endpoint table with the two-phase protocol: a
// count-only pass sizes the buffers, the fill pass decodes them. A fill
// pass that overflows is retried with the larger count; after maxRetries
// the records that fit are returned.
func QueryEndpoints(p *nsi.Provider, owners bool) ([]model.Endpoint, error) {
	params := &nsi.EnumParams{}
	if err := p.EnumerateAll(udp.ModuleID, udp.TableEndpoints, params); err != nil {
		return nil, fmt.Errorf("size endpoint table: %w", err)
	}

	for attempt := 0; ; attempt++ {
		capacity := slack(params.Count)
		params = &nsi.EnumParams{
			Key:     make([]byte, capacity*model.EndpointKeySize),
			KeySize: model.EndpointKeySize,
			Count:   capacity,
		}
		if owners {
			params.Static = make([]byte, capacity*model.EndpointStaticSize)
			params.StaticSize = model.EndpointStaticSize
		}

		err := p.EnumerateAll(udp.ModuleID, udp.TableEndpoints, params)
		switch {
		case err == nil:
			return decodeEndpoints(params, params.Count)
		case !errors.Is(err, nsi.ErrBufferOverflow):
			return nil, fmt.Errorf("read endpoint table: %w", err)
		case attempt == maxRetries:
			log.Warn("endpoint table keeps growing, returning a partial list", "have", capacity, "found", params.Count)
			return decodeEndpoints(params, capacity)
		}
		log.Debug("endpoint table grew, retrying", "have", capacity, "found", params.Count)
	}
}

func decodeEndpoints(params *nsi.EnumParams, n int) ([]model.Endpoint, error) {
	eps := make([]model.Endpoint, 0, n)
	for i := 0; i < n; i++ {
		k, err := model.DecodeEndpointKey(params.Key[i*model.EndpointKeySize:])
		if err != nil {
			return nil, err
		}
		e := model.Endpoint{Family: k.Family, Addr: k.Addr, Port: k.Port, ScopeID: k.ScopeID}
		if params.Static != nil {
			st, err := model.DecodeEndpointStatic(params.Static[i*model.EndpointStaticSize:])
			if err != nil {
				return nil, err
			}
			e.PID, e.CreateTime, e.Flags, e.ModInfo = st.PID, st.CreateTime, st.Flags, st.ModInfo
		}
		eps = append(eps, e)
	}
	return eps, nil
}

// QueryStats reads the aggregate counters of one family.
func QueryStats(p *nsi.Provider, family model.Family) (model.UDPStats, error) {
	key := make([]byte, model.StatsKeySize)
	model.PutFamily(key, family)
	dyn := make([]byte, model.UDPStatsSize)
	if err := p.GetAllParameters(udp.ModuleID, udp.TableStats, key, nil, dyn, nil); err != nil {
		return model.UDPStats{}, fmt.Errorf("read %s stats: %w", family, err)
	}
	return model.DecodeUDPStats(dyn)
}
