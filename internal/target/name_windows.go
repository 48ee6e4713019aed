//go:build windows

package target

import (
	"os/exec"
	"strconv"
	"strings"
)

const win32ProcessQuery = "Get-CimInstance -ClassName Win32_Process | ForEach-Object { 'Name=' + $_.Name; 'CommandLine=' + $_.CommandLine; 'ProcessId=' + $_.ProcessId }"

// ResolveName matches name against the Win32_Process list.
func ResolveName(_, name string, exact bool) ([]uint32, error) {
	out, err := exec.Command("powershell", "-NoProfile", "-NonInteractive", win32ProcessQuery).Output()
	if err != nil {
		return nil, err
	}

	pids := matchProcesses(parseWin32Processes(string(out)), name, exact)
	if len(pids) == 0 {
		return nil, noMatch(name)
	}
	return pids, nil
}

// parseWin32Processes reads Name=, CommandLine=, ProcessId= line triples;
// ProcessId closes a record.
func parseWin32Processes(out string) []process {
	var (
		procs []process
		cur   process
	)
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Name="):
			cur.comm = strings.TrimPrefix(line, "Name=")
		case strings.HasPrefix(line, "CommandLine="):
			cur.cmdline = strings.TrimPrefix(line, "CommandLine=")
		case strings.HasPrefix(line, "ProcessId="):
			if pid, err := strconv.ParseUint(strings.TrimPrefix(line, "ProcessId="), 10, 32); err == nil && pid != 0 {
				cur.pid = uint32(pid)
				procs = append(procs, cur)
			}
			cur = process{}
		}
	}
	return procs
}
