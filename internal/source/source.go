// Package source defines the contract the uevent core uses to drain a
// kernel-style event feed. The core never assumes which kernel mechanism
// backs a Source; it only assumes in-order delivery per device.
package source

// Handle is an opaque, reference-counted-in-spirit reference to the
// underlying source-adapter device object. It must be released exactly
// once, whether the event it belongs to is discarded at ingestion,
// serviced by a trigger, or absorbed as a merge child.
type Handle interface {
	Release()
}

// Property is one raw "name=value" pair as delivered by the kernel.
type Property struct {
	Name  string
	Value string
}

// RawEvent is a single raw notification from the source, before it has
// been parsed into a uevent.Event.
type RawEvent interface {
	// Properties returns the notification's property list, in the
	// order the kernel emitted them.
	Properties() []Property
	// Handle returns the reference that must be released once the raw
	// event (or the uevent.Event built from it) is no longer needed.
	Handle() Handle
}

// PollResult describes the outcome of a Poll call.
type PollResult int

const (
	// PollTimeout means the deadline elapsed with nothing to read.
	PollTimeout PollResult = iota
	// PollReady means Recv will return a RawEvent without blocking.
	PollReady
	// PollInterrupted means the poll was interrupted by a signal and
	// should simply be retried with no other side effects.
	PollInterrupted
)

// Source is the external contract the listener drains. Implementations
// must guarantee in-order delivery per device and block only inside
// Poll on the underlying descriptor.
type Source interface {
	// Subscribe narrows delivery to the given subsystem/devtype pair,
	// e.g. ("block", "disk").
	Subscribe(subsystem, devtype string) error
	// Poll blocks up to timeoutMs milliseconds waiting for a readable
	// notification. A non-nil error is always fatal to the listener.
	Poll(timeoutMs int) (PollResult, error)
	// Recv returns the next buffered raw notification. ok is false if
	// none is currently available (a transient condition to log and
	// continue past, not an error).
	Recv() (RawEvent, bool)
	// Close releases the underlying descriptor and any subscription.
	Close() error
}
