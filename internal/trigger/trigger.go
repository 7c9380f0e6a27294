// Package trigger defines the callback the dispatcher invokes for each
// surviving head event, and a small reference implementation useful for
// tests and local development.
package trigger

import (
	"log/slog"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/uevent"
)

// Trigger applies a serviced event to higher-level domain state (in the
// original system: multipath topology reconfiguration). A non-nil error
// is logged by the dispatcher at error level and otherwise ignored; it
// never aborts the rest of the snapshot.
type Trigger interface {
	Handle(ev *uevent.Event) error
}

// Func adapts a plain function to the Trigger interface.
type Func func(ev *uevent.Event) error

func (f Func) Handle(ev *uevent.Event) error { return f(ev) }

// Logging is a reference Trigger that just logs what it would have
// reconfigured, along with any merged children it absorbed. It is
// useful for development and for exercising the dispatcher end to end
// without a real multipath topology to mutate.
type Logging struct {
	Logger *slog.Logger
}

// NewLogging creates a Logging trigger using logger, or slog.Default()
// if nil.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{Logger: logger}
}

func (l *Logging) Handle(ev *uevent.Event) error {
	l.Logger.Info("uevent serviced",
		"action", string(ev.Action),
		"kernel", ev.Kernel,
		"wwid", ev.WWID,
		"merged", len(ev.Merged),
	)
	return nil
}
