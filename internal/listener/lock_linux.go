//go:build linux

package listener

import "golang.org/x/sys/unix"

// lockMemory locks all current and future pages into RAM so bursts of
// allocation under load pressure don't get paged out. It is
// best-effort: lacking CAP_IPC_LOCK is common and not fatal.
func lockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
