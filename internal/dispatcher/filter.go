package dispatcher

import "github.com/gyaneshwarpardhi/uevcoalesce/internal/metrics"

// canFilter reports whether earlier should be dropped in the presence
// of later: a later remove subsumes any earlier event on the same
// kernel name (unless later is a dm device), and a later add on a
// non-dm kernel subsumes an earlier change on that same kernel.
func canFilter(earlier, later *node) bool {
	e, l := earlier.ev, later.ev
	if e.Kernel != l.Kernel {
		return false
	}
	if l.Action == "remove" && !l.IsDM() {
		return true
	}
	if e.Action == "change" && l.Action == "add" && !l.IsDM() {
		return true
	}
	return false
}

// applyFilter runs the filter pass for the later node at index li
// against every still-alive earlier node preceding it.
func applyFilter(nodes []*node, li int) {
	later := nodes[li]
	for ei := li - 1; ei >= 0; ei-- {
		earlier := nodes[ei]
		if !earlier.alive {
			continue
		}
		if canFilter(earlier, later) {
			earlier.ev.Release()
			earlier.alive = false
			metrics.EventsFilteredOut.Inc()
		}
	}
}
