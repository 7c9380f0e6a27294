// Package dispatcher drains the handoff queue and runs the
// prepare/filter/merge/service pipeline over each snapshot.
package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/config"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/metrics"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/queue"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/trigger"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/uevent"
)

// Dispatcher consumes batches from a Queue and services them against a
// Trigger, using a scoped configuration snapshot per batch.
type Dispatcher struct {
	queue  *queue.Queue
	config *config.Store
	logger *slog.Logger
}

// New creates a Dispatcher over q, resolving configuration from cfg.
func New(q *queue.Queue, cfg *config.Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{queue: q, config: cfg, logger: logger}
}

// IsBusy reports pipeline quiescence: false iff the handoff queue is
// empty and no service pass is running.
func (d *Dispatcher) IsBusy() bool {
	return d.queue.IsBusy()
}

// QueueDepth reports the number of events currently waiting in the
// handoff queue, for the readiness probe.
func (d *Dispatcher) QueueDepth() int {
	return d.queue.Len()
}

// Run drains the queue until it is closed, servicing each snapshot
// against trig. Once ctx is cancelled, whatever the next Drain returns
// is released without being serviced and Run returns ctx's error. It
// returns nil when the queue is closed by other means and found empty.
func (d *Dispatcher) Run(ctx context.Context, trig trigger.Trigger) error {
	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			d.queue.Close()
		case <-stopWatch:
		}
	}()
	defer close(stopWatch)

	for {
		batch := d.queue.Drain()

		if ctx.Err() != nil {
			// Shutdown was requested. Whatever this drain returned is
			// released, not serviced: unlike the original C dispatcher,
			// which could leak a final in-flight batch across this exact
			// race, ownership here is always accounted for.
			if batch != nil {
				batch.Release()
			}
			return ctx.Err()
		}

		if batch == nil {
			return nil
		}

		d.processSnapshot(batch, trig)
	}
}

func (d *Dispatcher) processSnapshot(batch *uevent.Batch, trig trigger.Trigger) {
	snapshotID := uuid.NewString()
	start := time.Now()

	handle := d.config.Acquire()
	defer handle.Release()
	cfg := handle.Config()

	events := prepare(batch.Events(), cfg)
	nodes := newWorkingSet(events)
	filterAndMerge(nodes, cfg)
	survivors := aliveEvents(nodes)

	service(nodes, trig, d.logger)

	metrics.QueueDepth.Set(float64(d.queue.Len()))
	metrics.SnapshotProcessingDuration.Observe(float64(time.Since(start).Milliseconds()))
	d.logger.Debug("dispatched uevent snapshot",
		"snapshot_id", snapshotID,
		"ingested", batch.Len(),
		"serviced", len(survivors),
	)
}
