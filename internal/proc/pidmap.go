package proc

import (
	"fmt"
	"strings"

	"github.com/prometheus/procfs"
)

// UnknownPID is reported for connections no process owns, such as
// kernel-internal or already closed sockets.
const UnknownPID uint32 = 0

// PIDMap maps a kernel connection identifier to its owning process.
// It is a snapshot taken for one enumeration and never reused.
type PIDMap map[string]uint32

// Owner returns the owning PID, or UnknownPID.
func (m PIDMap) Owner(id string) uint32 {
	if pid, ok := m[id]; ok {
		return pid
	}
	return UnknownPID
}

func (m PIDMap) add(id string, pid uint32) {
	if cur, ok := m[id]; ok && cur <= pid {
		return
	}
	m[id] = pid
}

// BuildPIDMap scans the open files of every process under fs once and maps
// socket inodes to the lowest PID holding them.
func BuildPIDMap(fs procfs.FS) (PIDMap, error) {
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	m := make(PIDMap)
	for _, p := range procs {
		targets, err := p.FileDescriptorTargets()
		if err != nil {
			// exited, or not ours to look at
			continue
		}
		for _, target := range targets {
			if inode, ok := socketInode(target); ok {
				m.add(inode, uint32(p.PID))
			}
		}
	}
	return m, nil
}

// socketInode extracts the inode from a "socket:[12345]" link target.
func socketInode(target string) (string, bool) {
	if !strings.HasPrefix(target, "socket:[") || !strings.HasSuffix(target, "]") {
		return "", false
	}
	inode := strings.TrimSuffix(strings.TrimPrefix(target, "socket:["), "]")
	if inode == "" {
		return "", false
	}
	return inode, true
}
