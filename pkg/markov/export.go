package markov

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// ExportedChain is the serializable representation of a Chain, used for
// JSON-based import and export. Textlets are listed by id, so slots 0 and 1
// hold the Begin and End placeholders.
type ExportedChain struct {
	Textlets []string       `json:"textlets"`
	Edges    []ExportedEdge `json:"edges"`
}

// ExportedEdge is the serializable representation of a single Edge.
type ExportedEdge struct {
	Src   int `json:"src"`
	Dst   int `json:"dst"`
	Punct int `json:"punct"`
	Hits  int `json:"hits"`
}

// Export writes the chain as indented JSON to w. Edges are written in storage
// order, so an import into an empty chain reproduces the same ids and the
// same tie-breaking.
func (c *Chain) Export(w io.Writer) error {
	exported := ExportedChain{
		Textlets: make([]string, len(c.textlets)),
		Edges:    make([]ExportedEdge, 0, len(c.edges)),
	}
	copy(exported.Textlets, c.textlets)
	exported.Textlets[BeginTextletID] = BeginTextletText
	exported.Textlets[EndTextletID] = EndTextletText

	for _, edge := range c.edges {
		exported.Edges = append(exported.Edges, ExportedEdge(edge))
	}

	c.logger.Info("Chain exported",
		slog.Int("textlets_exported", len(exported.Textlets)),
		slog.Int("edges_exported", len(exported.Edges)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// Import reads a JSON chain from r and merges it into c. Textlets are
// re-mapped onto c's ids and hits are added onto edges c already has. The
// input is validated before anything is merged, so on error c is unchanged.
func (c *Chain) Import(r io.Reader) error {
	var imported ExportedChain
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return fmt.Errorf("failed to decode json chain: %w", err)
	}
	return c.merge(imported)
}

func (c *Chain) merge(imported ExportedChain) error {
	if len(imported.Textlets) < 2 {
		return fmt.Errorf("import consistency error: expected at least 2 textlets, got %d", len(imported.Textlets))
	}
	for i, edge := range imported.Edges {
		if err := checkEdge(imported.Textlets, Edge(edge)); err != nil {
			return fmt.Errorf("import consistency error: edge %d %w", i, err)
		}
	}

	idMap := make([]int, len(imported.Textlets)) // old_id -> new_id
	idMap[BeginTextletID] = BeginTextletID
	idMap[EndTextletID] = EndTextletID
	for oldID := EndTextletID + 1; oldID < len(imported.Textlets); oldID++ {
		idMap[oldID] = c.EnsureTextletIndex(imported.Textlets[oldID])
	}

	for _, edge := range imported.Edges {
		c.registerEdge(idMap[edge.Src], idMap[edge.Dst], idMap[edge.Punct], edge.Hits)
	}

	c.logger.Info("Chain imported",
		slog.Int("textlets_merged", len(imported.Textlets)),
		slog.Int("edges_merged", len(imported.Edges)),
	)
	return nil
}

// checkEdge reports whether edge can live in a chain whose textlets are
// textlets. Walks only stop at Begin and End, and every other step must
// lengthen the sentence, so edges may only leave Begin, only enter End, and
// must otherwise join non-empty textlets.
func checkEdge(textlets []string, edge Edge) error {
	for _, id := range []int{edge.Src, edge.Dst, edge.Punct} {
		if id < 0 || id >= len(textlets) {
			return fmt.Errorf("references unknown textlet %d", id)
		}
	}
	switch {
	case edge.Punct <= EndTextletID:
		return fmt.Errorf("uses a sentinel as punctuation")
	case edge.Src == EndTextletID:
		return fmt.Errorf("leaves End")
	case edge.Dst == BeginTextletID:
		return fmt.Errorf("enters Begin")
	case edge.Src != BeginTextletID && textlets[edge.Src] == "":
		return fmt.Errorf("leaves the empty textlet %d", edge.Src)
	case edge.Dst != EndTextletID && textlets[edge.Dst] == "":
		return fmt.Errorf("enters the empty textlet %d", edge.Dst)
	case edge.Hits <= 0:
		return fmt.Errorf("has %d hits", edge.Hits)
	}
	return nil
}
