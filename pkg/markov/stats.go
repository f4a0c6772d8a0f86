package markov

// ChainStats holds aggregated statistics for a Chain.
type ChainStats struct {
	Textlets      int `json:"textlets"`       // The number of textlets, sentinels included
	Edges         int `json:"edges"`          // The number of distinct edges
	Seeds         int `json:"seeds"`          // The number of textlets with an outgoing edge
	TotalHits     int `json:"total_hits"`     // The sum of all edge hits; the number of observed transitions
	StartingWords int `json:"starting_words"` // The number of distinct edges leaving Begin
}

// Stats returns a snapshot of statistics for the chain.
func (c *Chain) Stats() ChainStats {
	var totalHits int
	for _, edge := range c.edges {
		totalHits += edge.Hits
	}
	return ChainStats{
		Textlets:      len(c.textlets),
		Edges:         len(c.edges),
		Seeds:         len(c.seeds),
		TotalHits:     totalHits,
		StartingWords: len(c.forward[BeginTextletID]),
	}
}
