package listener

import (
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/metrics"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/source"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/uevent"
)

// buildEvent copies the raw property list into an Env (stopping, not
// erroring, on overflow), then requires DEVPATH and ACTION to be
// present. On failure the raw handle is released and nil is returned —
// the caller must simply skip this notification.
func buildEvent(raw source.RawEvent) *uevent.Event {
	env := uevent.NewEnv()
	for _, p := range raw.Properties() {
		if !env.Set(p.Name, p.Value) {
			break
		}
	}
	devpath, hasDevpath := env.Get("DEVPATH")
	action, hasAction := env.Get("ACTION")
	if !hasDevpath || !hasAction {
		raw.Handle().Release()
		metrics.UeventsDroppedIngest.Inc()
		return nil
	}
	kernel := uevent.KernelName(devpath)
	metrics.UeventsIngested.Inc()
	return uevent.New(uevent.Action(action), devpath, kernel, env, raw.Handle())
}
