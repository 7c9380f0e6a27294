// Package listener drains a kernel-style event source with adaptive
// burst accumulation and hands batches to the handoff queue.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/metrics"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/queue"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/source"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/uevent"
)

// Listener drains a Source and flushes staged events to a Queue via an
// adaptive single-poll accumulation loop.
type Listener struct {
	src        source.Source
	queue      *queue.Queue
	logger     *slog.Logger
	lockMemory bool
	stagingCap int
}

// Option configures optional Listener behavior.
type Option func(*Listener)

// WithMemoryLock enables the best-effort mlockall call at startup.
func WithMemoryLock(enabled bool) Option {
	return func(l *Listener) { l.lockMemory = enabled }
}

// WithStagingHint sets the initial capacity of the staging batch.
func WithStagingHint(n int) Option {
	return func(l *Listener) {
		if n > 0 {
			l.stagingCap = n
		}
	}
}

// New creates a Listener over src, flushing to q.
func New(src source.Source, q *queue.Queue, logger *slog.Logger, opts ...Option) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Listener{src: src, queue: q, logger: logger, stagingCap: 64}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Run initialises the source, then loops poll, receive-and-stage,
// recompute the poll timeout via the burst rule, and flush on
// timeout/zero-ready. It returns nil only on graceful cancellation via
// ctx, and a non-nil error on any fatal source failure.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.src.Subscribe("block", "disk"); err != nil {
		return fmt.Errorf("subscribe to source: %w", err)
	}
	if l.lockMemory {
		if err := lockMemory(); err != nil {
			l.logger.Warn("failed to lock memory pages", "err", err)
		}
	}

	staging := uevent.NewBatch(l.stagingCap)
	events := 0
	windowStart := time.Now()
	pollTimeout := IdlePollTimeoutMs
	metrics.BurstActive.Set(0)

	// A blocking Poll call has no way to observe ctx directly; closing
	// the source is what actually interrupts it, the same way the
	// dispatcher closes the handoff queue to unblock a pending Drain.
	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = l.src.Close()
		case <-stopWatch:
		}
	}()

	defer func() {
		close(stopWatch)
		staging.Release()
		_ = l.src.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		res, err := l.src.Poll(pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				// The watcher goroutine closed the source to interrupt
				// this exact call; the resulting error is expected, not
				// a fatal source failure.
				return nil
			}
			return fmt.Errorf("listener: fatal poll error: %w", err)
		}

		switch res {
		case source.PollReady:
			raw, ok := l.src.Recv()
			if !ok {
				l.logger.Debug("poll ready but recv returned nothing")
				continue
			}
			ev := buildEvent(raw)
			if ev == nil {
				continue
			}
			staging.Append(ev)
			events++
			elapsedMs := time.Since(windowStart).Milliseconds()
			pollTimeout = nextPollTimeoutMs(events, elapsedMs)
			if pollTimeout == burstPollTimeoutMs {
				metrics.BurstActive.Set(1)
			}

		case source.PollInterrupted:
			continue

		case source.PollTimeout:
			metrics.BurstActive.Set(0)
			if staging.Len() > 0 {
				n := staging.Len()
				l.queue.AppendBatch(staging)
				staging = uevent.NewBatch(l.stagingCap)
				metrics.BatchesFlushed.Inc()
				metrics.BatchSize.Observe(float64(n))
				l.logger.Debug("flushed uevent batch", "events", n)
			}
			events = 0
			windowStart = time.Now()
			pollTimeout = IdlePollTimeoutMs
		}
	}
}
