// Package queue implements the single-producer, single-consumer handoff
// FIFO between the listener and the dispatcher.
package queue

import (
	"sync"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/uevent"
)

// Queue is a FIFO of pending events guarded by a mutex and condition
// variable. The listener is the sole producer (AppendBatch); the
// dispatcher is the sole consumer (Drain).
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending *uevent.Batch
	busy    bool
	closed  bool
}

// New creates an empty Queue.
func New() *Queue {
	q := &Queue{pending: uevent.NewBatch(0)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// AppendBatch splices batch onto the tail of the queue and wakes the
// dispatcher. batch is left empty; ownership of its events transfers to
// the queue. Events flushed by a single call appear in the queue in the
// order they were staged.
func (q *Queue) AppendBatch(batch *uevent.Batch) {
	if batch.Len() == 0 {
		return
	}
	q.mu.Lock()
	q.pending.Extend(batch)
	q.mu.Unlock()
	q.cond.Signal()
}

// Drain waits while the queue is empty and not closed, then atomically
// transfers the entire queue into a caller-owned Batch and returns it.
// The busy flag is cleared immediately before waiting and set again
// before the transfer, so IsBusy can observe pipeline quiescence.
// Drain returns nil only once the queue has been Closed and found
// empty — the dispatcher's signal to stop.
func (q *Queue) Drain() *uevent.Batch {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending.Len() == 0 && !q.closed {
		q.busy = false
		q.cond.Wait()
	}
	q.busy = true
	if q.pending.Len() == 0 {
		return nil
	}
	return q.pending.Splice()
}

// IsBusy reports whether the queue holds pending events or the
// dispatcher is currently mid-service-pass.
func (q *Queue) IsBusy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len() > 0 || q.busy
}

// Len reports the number of events currently queued, for depth metrics.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}

// Close marks the queue as shutting down and wakes any waiter in
// Drain. Any events still queued are returned by the next Drain call
// rather than silently dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
