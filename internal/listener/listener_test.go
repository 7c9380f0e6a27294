package listener

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/queue"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/source"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestNextPollTimeoutMs(t *testing.T) {
	cases := []struct {
		name    string
		events  int
		elapsed int64
		want    int
	}{
		{"over max count ends burst", MaxAccumulationCount + 1, 500, 0},
		{"zero elapsed keeps polling fast", 1, 0, burstPollTimeoutMs},
		{"over max time ends burst", 5, MaxAccumulationTimeMs + 1, 0},
		{"fast rate continues burst", 100, 1000, burstPollTimeoutMs},
		{"slow rate ends burst", 1, 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextPollTimeoutMs(tc.events, tc.elapsed)
			if got != tc.want {
				t.Fatalf("nextPollTimeoutMs(%d, %d) = %d, want %d", tc.events, tc.elapsed, got, tc.want)
			}
		})
	}
}

// TestListenerFlushesOnIdle drives a Listener over a Fake source and
// checks that pushed notifications reach the queue as a batch once the
// source goes idle.
func TestListenerFlushesOnIdle(t *testing.T) {
	released := 0
	src := source.NewFake(func() { released++ })
	src.Push(source.Property{Name: "ACTION", Value: "add"}, source.Property{Name: "DEVPATH", Value: "/devices/sdb"})
	src.Push(source.Property{Name: "ACTION", Value: "add"}, source.Property{Name: "DEVPATH", Value: "/devices/sdc"})

	q := queue.New()
	l := New(src, q, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	done := make(chan struct{})
	var events int
	go func() {
		b := q.Drain()
		events = b.Len()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("listener never flushed a batch to the queue")
	}

	if events != 2 {
		t.Fatalf("expected 2 events in flushed batch, got %d", events)
	}

	// The listener is now blocked in an idle-timeout Poll; closing the
	// source is what actually unblocks it (mirrors the real shutdown
	// path, where cancellation alone can't interrupt a live socket read).
	cancel()
	src.Close()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run returned error on cancellation: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("listener did not stop after cancellation")
	}
}

// TestBuildEventDropsMissingDevpath covers the ingest-drop boundary:
// a raw notification lacking DEVPATH never reaches the queue and its
// handle is released immediately.
func TestBuildEventDropsMissingDevpath(t *testing.T) {
	src := source.NewFake(nil)
	h := src.Push(source.Property{Name: "ACTION", Value: "add"})

	src.Subscribe("block", "disk")
	res, err := src.Poll(0)
	if err != nil || res != source.PollReady {
		t.Fatalf("expected PollReady, got %v, %v", res, err)
	}
	raw, ok := src.Recv()
	if !ok {
		t.Fatalf("expected a pending notification")
	}
	ev := buildEvent(raw)
	if ev != nil {
		t.Fatalf("expected nil event for a notification missing DEVPATH")
	}
	if !h.Released() {
		t.Fatalf("expected the dropped notification's handle to be released")
	}
}
