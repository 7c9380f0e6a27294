package dispatcher

import "github.com/gyaneshwarpardhi/uevcoalesce/internal/metrics"

// mergeNeedStop reports whether the earlier-ward merge scan for later
// must stop at earlier: a dm-device later, a missing wwid on either
// side, or a same-wwid pair with differing non-change actions all act
// as barriers.
func mergeNeedStop(earlier, later *node) bool {
	e, l := earlier.ev, later.ev
	if l.IsDM() {
		return true
	}
	if e.WWID == "" || l.WWID == "" {
		return true
	}
	if e.WWID == l.WWID && e.Action != "change" && l.Action != "change" && e.Action != l.Action {
		return true
	}
	return false
}

// canMerge reports whether earlier should be absorbed into later's
// merged list: same non-empty wwid, same non-change action, and
// earlier is not a dm device.
func canMerge(earlier, later *node) bool {
	e, l := earlier.ev, later.ev
	if e.WWID == "" || l.WWID == "" || e.WWID != l.WWID {
		return false
	}
	if e.Action != l.Action {
		return false
	}
	if e.Action == "change" {
		return false
	}
	if e.IsDM() {
		return false
	}
	return true
}

// applyMerge runs the merge pass for the later node at index li,
// stopping the earlier-ward scan at the first barrier.
func applyMerge(nodes []*node, li int) {
	later := nodes[li]
	for ei := li - 1; ei >= 0; ei-- {
		earlier := nodes[ei]
		if !earlier.alive {
			continue
		}
		if mergeNeedStop(earlier, later) {
			break
		}
		if canMerge(earlier, later) {
			later.ev.Merged = append(later.ev.Merged, earlier.ev)
			earlier.alive = false
			metrics.EventsMerged.Inc()
		}
	}
}
