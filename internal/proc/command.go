package proc

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/pkg/model"
)

// Runner runs a management command and returns its standard output.
type Runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// listing is one command that prints the UDP sockets of a family.
type listing struct {
	family model.Family
	name   string
	args   []string
	parse  func(out []byte, family model.Family) []model.Endpoint
}

// CommandSource gathers UDP state from management commands such as
// netstat, sockstat or lsof.
type CommandSource struct {
	name     string
	run      Runner
	listings []listing
	owners   func(Runner) (PIDMap, error)
	stats    func(Runner, model.Family) (model.UDPStats, error)
	scopes   func() (*ScopeTable, error)
	comm     func(Runner, uint32) string
}

func (s *CommandSource) Name() string { return s.name }

func (s *CommandSource) Stats(family model.Family) (model.UDPStats, error) {
	if !family.Valid() {
		return model.UDPStats{}, fmt.Errorf("%s: %w", family, nsi.ErrNotSupported)
	}
	if s.stats == nil {
		return model.UDPStats{}, fmt.Errorf("%s stats: %w", s.name, nsi.ErrNotSupported)
	}
	return s.stats(s.run, family)
}

func (s *CommandSource) Endpoints(opts EndpointOptions, fn func(model.Endpoint)) error {
	var loadOwners func() (PIDMap, error)
	if s.owners != nil {
		loadOwners = func() (PIDMap, error) { return s.owners(s.run) }
	}
	r := newResolvers(opts, loadOwners, s.scopes)

	usable := 0
	for _, l := range s.listings {
		out, err := s.run(l.name, l.args...)
		if err != nil {
			log.Debug("udp listing unavailable", "cmd", l.name, "args", strings.Join(l.args, " "), "err", err)
			continue
		}
		usable++
		for _, e := range l.parse(out, l.family) {
			r.resolve(&e)
			fn(e)
		}
	}

	if usable == 0 {
		return fmt.Errorf("%s: no udp listing: %w", s.name, nsi.ErrNotSupported)
	}
	return nil
}

// ProcessName returns the command name of pid, asking ps unless the
// platform has its own way.
func (s *CommandSource) ProcessName(pid uint32) string {
	if s.comm != nil {
		return s.comm(s.run, pid)
	}
	out, err := s.run("ps", "-o", "comm=", "-p", strconv.FormatUint(uint64(pid), 10))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
