//go:build linux

package target

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
)

// ResolveName matches name against the processes under procRoot. A running
// systemd service of that name contributes its main PID first.
func ResolveName(procRoot, name string, exact bool) ([]uint32, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, err
	}
	all, err := fs.AllProcs()
	if err != nil {
		return nil, err
	}

	procs := make([]process, 0, len(all))
	for _, p := range all {
		comm, err := p.Comm()
		if err != nil {
			continue
		}
		args, _ := p.CmdLine()
		procs = append(procs, process{pid: uint32(p.PID), comm: comm, cmdline: strings.Join(args, " ")})
	}

	pids := matchProcesses(procs, name, exact)
	if svc, err := resolveSystemdServiceMainPID(name); err == nil {
		pids = append([]uint32{svc}, without(pids, svc)...)
	}
	if len(pids) == 0 {
		return nil, noMatch(name)
	}
	return pids, nil
}

func without(pids []uint32, pid uint32) []uint32 {
	out := pids[:0:0]
	for _, p := range pids {
		if p != pid {
			out = append(out, p)
		}
	}
	return out
}

// resolveSystemdServiceMainPID returns the MainPID of a running service.
func resolveSystemdServiceMainPID(name string) (uint32, error) {
	svcName := name
	if !strings.HasSuffix(svcName, ".service") {
		svcName += ".service"
	}
	out, err := exec.Command("systemctl", "show", "-p", "MainPID", "--value", "--", svcName).Output()
	if err != nil {
		return 0, err
	}
	pid, err := strconv.ParseUint(strings.TrimSpace(string(out)), 10, 32)
	if err != nil || pid == 0 {
		return 0, noMatch(svcName)
	}
	return uint32(pid), nil
}
