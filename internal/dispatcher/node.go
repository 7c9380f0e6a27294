package dispatcher

import "github.com/gyaneshwarpardhi/uevcoalesce/internal/uevent"

// node tracks liveness of an event during the filter/merge pass. The
// original C list can delete a node in O(1) and have iteration simply
// skip it; a slice needs an explicit alive flag to get the same
// "removed nodes vanish from every further scan" behavior.
type node struct {
	ev    *uevent.Event
	alive bool
}

func newWorkingSet(events []*uevent.Event) []*node {
	nodes := make([]*node, len(events))
	for i, ev := range events {
		nodes[i] = &node{ev: ev, alive: true}
	}
	return nodes
}

func aliveEvents(nodes []*node) []*uevent.Event {
	out := make([]*uevent.Event, 0, len(nodes))
	for _, n := range nodes {
		if n.alive {
			out = append(out, n.ev)
		}
	}
	return out
}
