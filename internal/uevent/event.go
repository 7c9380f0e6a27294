package uevent

import (
	"strings"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/source"
)

// Action is the kernel action a uevent announces. Only Add, Change, and
// Remove carry algorithmic meaning for filtering and merging; the rest
// are recognized but pass through untouched.
type Action string

const (
	ActionAdd     Action = "add"
	ActionChange  Action = "change"
	ActionRemove  Action = "remove"
	ActionMove    Action = "move"
	ActionOnline  Action = "online"
	ActionOffline Action = "offline"
	ActionBind    Action = "bind"
	ActionUnbind  Action = "unbind"
)

// dmPrefix marks device-mapper virtual devices — the aggregated
// multipath device rather than a physical path. dm-* events never
// participate in devnode filtering or merging; they act as merge
// barriers for whatever preceded them in a snapshot.
const dmPrefix = "dm-"

// Event represents one kernel notification, from ingestion through
// service or absorption into a merge parent's Merged list. Exactly one
// owner holds an Event at any instant: a listener's staging Batch, the
// handoff queue, a dispatcher's working snapshot, or a parent's Merged
// list.
type Event struct {
	Action  Action
	Devpath string
	// Kernel is the substring of Devpath after the last '/'.
	Kernel string
	Env    *Env
	// WWID is the resolved logical-unit identifier, set by the
	// dispatcher's prepare pass. Empty means unresolved or not
	// applicable (dm-* events, or merging disabled).
	WWID string
	// Merged holds child events absorbed into this one during the
	// dispatcher's merge pass, in absorption order.
	Merged []*Event

	handle   source.Handle
	released bool
}

// New builds an Event that owns handle. Callers must eventually call
// Release exactly once (directly, or by letting a merge parent's
// Release cascade into it).
func New(action Action, devpath, kernel string, env *Env, handle source.Handle) *Event {
	return &Event{
		Action:  action,
		Devpath: devpath,
		Kernel:  kernel,
		Env:     env,
		handle:  handle,
	}
}

// KernelName returns the substring of devpath after the last '/', or
// devpath itself if it contains no '/'.
func KernelName(devpath string) string {
	if i := strings.LastIndexByte(devpath, '/'); i >= 0 {
		return devpath[i+1:]
	}
	return devpath
}

// IsDM reports whether this event names a device-mapper virtual device.
func (e *Event) IsDM() bool {
	return strings.HasPrefix(e.Kernel, dmPrefix)
}

// Release releases the underlying source handle and recursively
// releases every merged child. It is idempotent: only the first call
// has effect, so accidental double-release (e.g. a snapshot cleanup
// racing a merge-parent cascade) can never double-free a handle.
func (e *Event) Release() {
	if e == nil || e.released {
		return
	}
	e.released = true
	for _, child := range e.Merged {
		child.Release()
	}
	if e.handle != nil {
		e.handle.Release()
	}
}
