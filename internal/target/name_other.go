//go:build !linux && !windows

package target

import (
	"os/exec"
	"strconv"
	"strings"
)

// ResolveName matches name against the process list printed by ps.
func ResolveName(_, name string, exact bool) ([]uint32, error) {
	out, err := exec.Command("ps", "-axo", "pid=,comm=,args=").Output()
	if err != nil {
		return nil, err
	}

	pids := matchProcesses(parsePS(string(out)), name, exact)
	if len(pids) == 0 {
		return nil, noMatch(name)
	}
	return pids, nil
}

// parsePS reads "pid comm args..." lines.
func parsePS(out string) []process {
	var procs []process
	for line := range strings.Lines(out) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			continue
		}
		procs = append(procs, process{pid: uint32(pid), comm: fields[1], cmdline: strings.Join(fields[2:], " ")})
	}
	return procs
}
