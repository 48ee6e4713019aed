package pipeline

import (
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
	"github.com/samber/lo"
)

var families = []model.Family{model.FamilyIPv4, model.FamilyIPv6}

type AnalyzeConfig struct {
	// Family limits endpoints to one family; FamilyUnspec keeps both.
	Family model.Family
	// PIDs keeps only endpoints owned by these processes.
	PIDs []uint32
	// Owners asks for the static records carrying the owning PID.
	Owners bool
	// Stats also reads the per-family counters.
	Stats bool
}

// Snapshot is one reading of the UDP tables.
type Snapshot struct {
	Taken     time.Time                       `json:"taken"`
	Stats     map[model.Family]model.UDPStats `json:"stats,omitempty"`
	Endpoints []model.Endpoint                `json:"endpoints,omitempty"`
}

// Analyze reads the UDP tables through p and applies the filters of cfg.
// Families whose counters are not supported are left out of Stats.
func Analyze(p *nsi.Provider, cfg AnalyzeConfig) (Snapshot, error) {
	owners := cfg.Owners || len(cfg.PIDs) > 0
	eps, err := QueryEndpoints(p, owners)
	if err != nil {
		return Snapshot{}, err
	}

	eps = lo.Filter(eps, func(e model.Endpoint, _ int) bool {
		if cfg.Family != model.FamilyUnspec && e.Family != cfg.Family {
			return false
		}
		return len(cfg.PIDs) == 0 || lo.Contains(cfg.PIDs, e.PID)
	})

	snap := Snapshot{Taken: time.Now(), Endpoints: eps}
	if !cfg.Stats {
		return snap, nil
	}

	stats, err := ReadStats(p, cfg.Family)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Stats = stats
	return snap, nil
}

// ReadStats reads the counters of family, or of every family when family is
// FamilyUnspec. Families whose counters are not supported are left out.
func ReadStats(p *nsi.Provider, family model.Family) (map[model.Family]model.UDPStats, error) {
	stats := make(map[model.Family]model.UDPStats, len(families))
	for _, f := range families {
		if family != model.FamilyUnspec && f != family {
			continue
		}
		s, err := QueryStats(p, f)
		if errors.Is(err, nsi.ErrNotSupported) {
			log.Debug("udp counters not supported", "family", f)
			continue
		}
		if err != nil {
			return nil, err
		}
		stats[f] = s
	}
	return stats, nil
}

// Families lists the families Stats may hold, in display order.
func Families() []model.Family {
	return slices.Clone(families)
}
