//go:build !linux

package listener

import "fmt"

// lockMemory is unavailable outside Linux; mlockall is a Linux syscall.
func lockMemory() error {
	return fmt.Errorf("memory locking is only available on linux")
}
