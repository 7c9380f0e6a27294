package dispatcher

import "github.com/gyaneshwarpardhi/uevcoalesce/internal/config"

// filterAndMerge runs a combined per-"later" reverse walk: for each
// surviving later event, filter subsumed earlier events, then (if
// merging is enabled) absorb mergeable ones.
func filterAndMerge(nodes []*node, cfg *config.RuleConfig) {
	mergingEnabled := cfg.MergingEnabled()
	for li := len(nodes) - 1; li >= 0; li-- {
		later := nodes[li]
		if !later.alive {
			continue
		}
		applyFilter(nodes, li)
		if mergingEnabled {
			applyMerge(nodes, li)
		}
	}
}
