package markov

import (
	"log/slog"
)

// Prune removes every edge observed minHits times or fewer, which drops rare,
// often noisy, transitions. Textlets are never removed, so ids stay stable.
// It returns the number of edges removed.
//
// Pruning can leave textlets reachable in one direction only; composition
// treats such a dead end in the middle of a walk as the end of that walk.
func (c *Chain) Prune(minHits int) int {
	kept := make([]Edge, 0, len(c.edges))
	for _, edge := range c.edges {
		if edge.Hits > minHits {
			kept = append(kept, edge)
		}
	}
	removed := len(c.edges) - len(kept)
	if removed == 0 {
		c.logger.Info("Nothing to prune", slog.Int("min_hits", minHits))
		return 0
	}

	c.edges = nil
	c.seeds = nil
	c.seedSet = make(map[int]struct{})
	c.forward = make(map[int][]int)
	c.reverse = make(map[int][]int)
	for _, edge := range kept {
		c.registerEdge(edge.Src, edge.Dst, edge.Punct, edge.Hits)
	}

	c.logger.Info("Chain pruned",
		slog.Int("min_hits", minHits),
		slog.Int("edges_removed", removed),
		slog.Int("edges_remaining", len(c.edges)),
	)
	return removed
}
