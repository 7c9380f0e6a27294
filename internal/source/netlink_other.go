//go:build !linux

package source

import "fmt"

// Netlink is unavailable on non-Linux platforms; NETLINK_KOBJECT_UEVENT
// is a Linux-only kernel facility.
type Netlink struct{}

// OpenNetlink always fails on non-Linux platforms.
func OpenNetlink() (*Netlink, error) {
	return nil, fmt.Errorf("netlink uevent source is only available on linux")
}

func (n *Netlink) Subscribe(subsystem, devtype string) error { return nil }
func (n *Netlink) Poll(timeoutMs int) (PollResult, error)    { return PollTimeout, nil }
func (n *Netlink) Recv() (RawEvent, bool)                    { return nil, false }
func (n *Netlink) Close() error                              { return nil }
