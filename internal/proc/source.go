package proc

import "github.com/nsistat/udpstat/pkg/model"

// EndpointOptions says which expensive lookups an enumeration needs.
type EndpointOptions struct {
	// Scopes resolves IPv6 scope identifiers (the caller wants keys).
	Scopes bool
	// Owners resolves the owning process (the caller wants static records).
	Owners bool
}

// Source is one operating-system facility describing UDP state.
//
// Endpoints calls fn for every endpoint, IPv4 sources before IPv6 sources,
// each in the order the OS reports them. A source that is missing is
// skipped; only when none is usable does Endpoints fail with
// nsi.ErrNotSupported.
type Source interface {
	Name() string
	Stats(family model.Family) (model.UDPStats, error)
	Endpoints(opts EndpointOptions, fn func(model.Endpoint)) error
}

// Options configures DefaultSource.
type Options struct {
	// ProcRoot is the procfs mount point on Linux.
	ProcRoot string
}

// ProcessNamer is implemented by sources that can name a process.
type ProcessNamer interface {
	ProcessName(pid uint32) string
}
