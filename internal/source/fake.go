package source

import (
	"sync"
	"time"
)

// FakeHandle is a Handle that records whether it has been released, so
// tests can assert the "exactly one release" invariant.
type FakeHandle struct {
	mu       sync.Mutex
	released bool
	onLast   func()
}

// Released reports whether Release has been called.
func (h *FakeHandle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release marks the handle released. Calling it more than once past the
// first has no further effect, matching real reference-counted handles.
func (h *FakeHandle) Release() {
	h.mu.Lock()
	already := h.released
	h.released = true
	cb := h.onLast
	h.mu.Unlock()
	if !already && cb != nil {
		cb()
	}
}

// fakeRawEvent is a RawEvent backed by a plain property slice.
type fakeRawEvent struct {
	props  []Property
	handle *FakeHandle
}

func (r *fakeRawEvent) Properties() []Property { return r.props }
func (r *fakeRawEvent) Handle() Handle         { return r.handle }

// Fake is an in-memory Source for tests and local development: raw
// notifications are pushed with Push and delivered to Poll/Recv in FIFO
// order, without touching any real kernel socket.
type Fake struct {
	mu        sync.Mutex
	cond      *sync.Cond
	pending   []*fakeRawEvent
	closed    bool
	onRelease func()
}

// NewFake creates a Fake source. onRelease, if non-nil, is invoked every
// time a handle produced by this source is released — handy for
// counting releases in tests.
func NewFake(onRelease func()) *Fake {
	f := &Fake{onRelease: onRelease}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push injects a raw notification as if the kernel had emitted it.
func (f *Fake) Push(props ...Property) *FakeHandle {
	h := &FakeHandle{onLast: f.onRelease}
	f.mu.Lock()
	f.pending = append(f.pending, &fakeRawEvent{props: props, handle: h})
	f.mu.Unlock()
	f.cond.Signal()
	return h
}

func (f *Fake) Subscribe(subsystem, devtype string) error { return nil }

// Poll blocks until either an event is pending or timeoutMs elapses.
// timeoutMs <= 0 returns immediately with the current state.
func (f *Fake) Poll(timeoutMs int) (PollResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) > 0 {
		return PollReady, nil
	}
	if f.closed || timeoutMs <= 0 {
		return PollTimeout, nil
	}
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	timer := time.AfterFunc(time.Duration(timeoutMs)*time.Millisecond, func() {
		f.mu.Lock()
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer timer.Stop()
	for len(f.pending) == 0 && !f.closed && time.Now().Before(deadline) {
		f.cond.Wait()
	}
	if len(f.pending) > 0 {
		return PollReady, nil
	}
	return PollTimeout, nil
}

func (f *Fake) Recv() (RawEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil, false
	}
	r := f.pending[0]
	f.pending = f.pending[1:]
	return r, true
}

func (f *Fake) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.cond.Broadcast()
	return nil
}
