package proc

import (
	"net/netip"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/pkg/model"
)

// resolvers holds the lookup tables of one enumeration. They are built on
// first need and dropped with the enumeration.
type resolvers struct {
	opts EndpointOptions

	owners PIDMap

	loadScopes   func() (*ScopeTable, error)
	scopes       *ScopeTable
	scopesLoaded bool
}

func newResolvers(opts EndpointOptions, loadOwners func() (PIDMap, error), loadScopes func() (*ScopeTable, error)) *resolvers {
	r := &resolvers{opts: opts, loadScopes: loadScopes}
	if opts.Owners && loadOwners != nil {
		owners, err := loadOwners()
		if err != nil {
			log.Debug("process table unavailable, owners unknown", "err", err)
		}
		r.owners = owners
	}
	return r
}

func (r *resolvers) resolve(e *model.Endpoint) {
	if r.opts.Owners && e.PID == UnknownPID {
		e.PID = r.owners.Owner(e.ConnID)
	}
	if r.opts.Scopes && e.Family == model.FamilyIPv6 && e.ScopeID == 0 {
		e.ScopeID = r.scope(e.Addr)
	}
}

func (r *resolvers) scope(addr netip.Addr) uint32 {
	if !r.scopesLoaded {
		r.scopesLoaded = true
		if r.loadScopes != nil {
			t, err := r.loadScopes()
			if err != nil {
				log.Debug("address scope table unavailable", "err", err)
			}
			r.scopes = t
		}
	}
	return r.scopes.Lookup(addr)
}
