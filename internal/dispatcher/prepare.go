package dispatcher

import (
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/config"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/metrics"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/uevent"
)

// prepare discards events the devnode filter rejects, and resolves
// wwid for events eligible to merge. dm-* events are exempt from both
// rules — they are never filtered by devnode rules and never
// participate in merging, acting as merge barriers instead.
//
// Discard and wwid-resolution are both per-event decisions independent
// of traversal order, so a single forward pass yields the same
// surviving set, in the same relative order, as a reverse scan would.
func prepare(events []*uevent.Event, cfg *config.RuleConfig) []*uevent.Event {
	mergingEnabled := cfg.MergingEnabled()
	kept := make([]*uevent.Event, 0, len(events))
	for _, ev := range events {
		isDM := ev.IsDM()
		if !isDM && !cfg.Devnode.Accepts(ev.Kernel) {
			ev.Release()
			metrics.EventsDiscarded.Inc()
			continue
		}
		if !isDM && mergingEnabled {
			key := cfg.UIDAttribute(ev.Kernel)
			if v, ok := uevent.GetEnv(ev, key); ok {
				ev.WWID = v
			}
		}
		kept = append(kept, ev)
	}
	return kept
}
