package dispatcher

import (
	"log/slog"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/metrics"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/trigger"
)

// service walks survivors forward, invokes the trigger, logs but never
// surfaces trigger errors, then releases each event (cascading into
// its merged children).
func service(nodes []*node, trig trigger.Trigger, logger *slog.Logger) {
	for _, n := range nodes {
		if !n.alive {
			continue
		}
		ev := n.ev
		if err := trig.Handle(ev); err != nil {
			logger.Error("uevent trigger failed", "err", err, "kernel", ev.Kernel, "action", string(ev.Action))
			metrics.TriggerErrors.Inc()
		}
		metrics.EventsServiced.Inc()
		ev.Release()
	}
}
