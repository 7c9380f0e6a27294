package queue

import (
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/uevent"
)

func pushBatch(kernels ...string) *uevent.Batch {
	b := uevent.NewBatch(len(kernels))
	for _, k := range kernels {
		b.Append(uevent.New(uevent.ActionAdd, "/devices/"+k, k, uevent.NewEnv(), nil))
	}
	return b
}

func TestAppendDrainFIFOOrder(t *testing.T) {
	q := New()
	q.AppendBatch(pushBatch("sda", "sdb"))
	q.AppendBatch(pushBatch("sdc"))

	got := q.Drain()
	events := got.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []string{"sda", "sdb", "sdc"}
	for i, w := range want {
		if events[i].Kernel != w {
			t.Fatalf("event %d = %s, want %s", i, events[i].Kernel, w)
		}
	}
}

// TestIsBusyInvariant asserts is_busy is false iff the queue is empty
// and no service pass is in progress (busy stays set from a Drain
// until the next Drain call).
func TestIsBusyInvariant(t *testing.T) {
	q := New()
	if q.IsBusy() {
		t.Fatalf("expected fresh queue to be idle")
	}

	q.AppendBatch(pushBatch("sda"))
	if !q.IsBusy() {
		t.Fatalf("expected queue with pending events to be busy")
	}

	batch := q.Drain()
	if batch.Len() != 1 {
		t.Fatalf("expected to drain 1 event")
	}
	if !q.IsBusy() {
		t.Fatalf("expected queue to remain busy immediately after Drain (mid-service)")
	}
}

func TestDrainBlocksUntilAppend(t *testing.T) {
	q := New()
	done := make(chan *uevent.Batch, 1)
	go func() {
		done <- q.Drain()
	}()

	select {
	case <-done:
		t.Fatalf("Drain returned before any batch was appended")
	case <-time.After(20 * time.Millisecond):
	}

	q.AppendBatch(pushBatch("sda"))

	select {
	case b := <-done:
		if b.Len() != 1 {
			t.Fatalf("expected drained batch of 1, got %d", b.Len())
		}
	case <-time.After(time.Second):
		t.Fatalf("Drain did not unblock after AppendBatch")
	}
}

func TestCloseUnblocksDrainWithNil(t *testing.T) {
	q := New()
	done := make(chan *uevent.Batch, 1)
	go func() {
		done <- q.Drain()
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case b := <-done:
		if b != nil {
			t.Fatalf("expected nil batch from Drain on an empty closed queue, got %v", b)
		}
	case <-time.After(time.Second):
		t.Fatalf("Drain did not unblock after Close")
	}
}

func TestCloseDeliversQueuedEventsBeforeNil(t *testing.T) {
	q := New()
	q.AppendBatch(pushBatch("sda"))
	q.Close()

	b := q.Drain()
	if b == nil || b.Len() != 1 {
		t.Fatalf("expected the queued batch to still be delivered after Close")
	}

	b2 := q.Drain()
	if b2 != nil {
		t.Fatalf("expected nil once the closed queue is empty")
	}
}
