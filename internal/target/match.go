// Package target resolves a process name given on the command line to the
// PIDs it may refer to.
package target

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// process is one candidate for name matching.
type process struct {
	pid     uint32
	comm    string
	cmdline string
}

// matchProcesses returns the sorted PIDs of procs whose command name or
// command line matches name. exact requires the command name or one
// argument to equal name; otherwise a substring is enough. The running
// process and its parent never match, nor do grep-like searches.
func matchProcesses(procs []process, name string, exact bool) []uint32 {
	lowerName := strings.ToLower(name)
	ignored := []uint32{uint32(os.Getpid()), uint32(os.Getppid())}

	pids := lo.FilterMap(procs, func(p process, _ int) (uint32, bool) {
		if lo.Contains(ignored, p.pid) {
			return 0, false
		}
		comm := strings.ToLower(p.comm)
		cmd := strings.ToLower(p.cmdline)
		if strings.Contains(comm, "grep") || strings.Contains(cmd, "grep") {
			return 0, false
		}
		if exact {
			return p.pid, comm == lowerName || slices.Contains(strings.Fields(cmd), lowerName)
		}
		return p.pid, strings.Contains(comm, lowerName) || strings.Contains(cmd, lowerName)
	})
	pids = lo.Uniq(pids)
	slices.Sort(pids)
	return pids
}

func noMatch(name string) error {
	return fmt.Errorf("no running process named %q", name)
}
