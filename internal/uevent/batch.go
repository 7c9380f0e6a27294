package uevent

// Batch is an owned, ordered sequence of Events. It exists so ownership
// transitions between the listener's staging area, the handoff queue,
// and a dispatcher's working snapshot are explicit moves rather than
// shared references — the Go analogue of the original C code's
// intrusive-list splice between those same four positions (staging,
// queue, snapshot, per-event Merged list).
type Batch struct {
	events []*Event
}

// NewBatch allocates an empty Batch with room for n events.
func NewBatch(n int) *Batch {
	return &Batch{events: make([]*Event, 0, n)}
}

// Append adds an event to the tail of the batch.
func (b *Batch) Append(e *Event) {
	b.events = append(b.events, e)
}

// Len returns the number of events currently held.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.events)
}

// Events exposes the underlying slice for iteration. Callers that need
// to mutate the sequence (drop or reorder elements) should do so via
// Splice/Release rather than by mutating this slice directly.
func (b *Batch) Events() []*Event {
	if b == nil {
		return nil
	}
	return b.events
}

// Splice moves every event out of b into a freshly returned Batch and
// leaves b empty, ready for reuse. This is the "hand the whole staging
// list to the queue" move: no per-element copying, just a header swap.
func (b *Batch) Splice() *Batch {
	out := &Batch{events: b.events}
	b.events = nil
	return out
}

// Extend splices other's contents onto the tail of b, leaving other
// empty.
func (b *Batch) Extend(other *Batch) {
	if other == nil || len(other.events) == 0 {
		return
	}
	b.events = append(b.events, other.events...)
	other.events = nil
}

// Release releases every event still held by the batch and empties it.
// Used on the listener's and the dispatcher's shutdown paths, where
// staged or drained events are abandoned without being serviced.
func (b *Batch) Release() {
	if b == nil {
		return
	}
	for _, e := range b.events {
		e.Release()
	}
	b.events = nil
}
