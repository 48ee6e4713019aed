// Package udp registers the UDP statistics tables: per-family aggregate
// counters and the local endpoint table.
package udp

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/internal/proc"
	"github.com/nsistat/udpstat/pkg/model"
)

const ModuleID nsi.ModuleID = "udp"

const (
	TableStats     nsi.TableID = 0
	TableEndpoints nsi.TableID = 1
)

type module struct {
	src proc.Source
}

// NewModule builds the UDP tables over src. With a nil src every table
// answers nsi.ErrNotImplemented.
func NewModule(src proc.Source) nsi.Module {
	m := &module{src: src}
	return nsi.Module{
		ID: ModuleID,
		Tables: []nsi.Table{
			{
				ID:               TableStats,
				Sizes:            nsi.Sizes{Key: model.StatsKeySize, Dynamic: model.UDPStatsSize},
				GetAllParameters: m.statsGetAll,
			},
			{
				ID:           TableEndpoints,
				Sizes:        nsi.Sizes{Key: model.EndpointKeySize, Static: model.EndpointStaticSize},
				EnumerateAll: m.endpointsEnumerate,
			},
		},
	}
}

// NewProvider is a provider serving only the UDP module.
func NewProvider(src proc.Source) (*nsi.Provider, error) {
	return nsi.NewProvider(NewModule(src))
}

func (m *module) statsGetAll(key, _, dynamic, _ []byte) error {
	if m.src == nil {
		return fmt.Errorf("udp stats: %w", nsi.ErrNotImplemented)
	}
	family, err := model.DecodeFamily(key)
	if err != nil {
		return fmt.Errorf("udp stats key: %w", nsi.ErrInvalidParameter)
	}
	if !family.Valid() {
		return fmt.Errorf("udp stats for %s: %w", family, nsi.ErrNotSupported)
	}

	stats, err := m.src.Stats(family)
	if err != nil {
		return err
	}
	if len(dynamic) == 0 {
		return nil
	}
	stats.NumAddrs = m.countAddrs(family)
	stats.Put(dynamic)
	return nil
}

// countAddrs is a count-only pass over the endpoint sources.
func (m *module) countAddrs(family model.Family) uint32 {
	var n uint32
	err := m.src.Endpoints(proc.EndpointOptions{}, func(e model.Endpoint) {
		if e.Family == family {
			n++
		}
	})
	if err != nil {
		log.Debug("udp endpoint count unavailable", "family", family, "err", err)
		return 0
	}
	return n
}

func (m *module) endpointsEnumerate(p *nsi.EnumParams) error {
	if m.src == nil {
		return fmt.Errorf("udp endpoints: %w", nsi.ErrNotImplemented)
	}

	c := nsi.NewCursor(p)
	opts := proc.EndpointOptions{Scopes: c.WantKeys(), Owners: c.WantStatic()}
	err := m.src.Endpoints(opts, func(e model.Endpoint) {
		c.Emit(func(s nsi.Slot) {
			if s.Key != nil {
				e.Key().Put(s.Key)
			}
			if s.Static != nil {
				e.Static().Put(s.Static)
			}
		})
	})
	if err != nil {
		p.Count = c.Found()
		return err
	}
	return c.Done()
}
