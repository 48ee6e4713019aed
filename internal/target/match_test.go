package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchProcesses(t *testing.T) {
	procs := []process{
		{pid: 412, comm: "syslogd", cmdline: "/usr/sbin/syslogd -s"},
		{pid: 88, comm: "unbound", cmdline: "/usr/sbin/unbound -d"},
		{pid: 90, comm: "unbound-anchor", cmdline: "unbound-anchor -a root.key"},
		{pid: 91, comm: "grep", cmdline: "grep unbound"},
		{pid: 7, comm: "python3", cmdline: "python3 dns.py unbound"},
		{pid: 88, comm: "unbound", cmdline: "/usr/sbin/unbound -d"},
	}

	assert.Equal(t, []uint32{7, 88, 90}, matchProcesses(procs, "Unbound", false))
	assert.Equal(t, []uint32{7, 88}, matchProcesses(procs, "unbound", true))
	assert.Empty(t, matchProcesses(procs, "named", false))
}
