package markov

import (
	"testing"
)

func TestParseSentenceCounts(t *testing.T) {
	c := NewChain()
	c.ParseSentence("Mary had a little lamb")

	if c.Len() != 9 {
		t.Errorf("expected 9 textlets, got %d", c.Len())
	}
	if c.NumEdges() != 6 {
		t.Errorf("expected 6 edges, got %d", c.NumEdges())
	}

	if id, ok := c.TryGetTextletIndex(""); !ok || id != 2 {
		t.Errorf("TryGetTextletIndex(\"\") = %d, %v; want 2, true", id, ok)
	}
	if id, ok := c.TryGetTextletIndex(" "); !ok || id != 4 {
		t.Errorf("TryGetTextletIndex(\" \") = %d, %v; want 4, true", id, ok)
	}
	if _, ok := c.TryGetTextletIndex("."); ok {
		t.Error("expected \".\" to be unknown")
	}
}

func TestParseSentenceIsIdempotentInTopology(t *testing.T) {
	c := NewChain()
	const n = 4
	for i := 0; i < n; i++ {
		c.ParseSentence("Mary had a little lamb")
	}

	if c.NumEdges() != 6 {
		t.Fatalf("re-parsing added edges: got %d, want 6", c.NumEdges())
	}
	for i, edge := range c.Edges() {
		if edge.Hits != n {
			t.Errorf("edge %d has %d hits, want %d", i, edge.Hits, n)
		}
	}
	if c.Len() != 9 {
		t.Errorf("re-parsing added textlets: got %d", c.Len())
	}
}

func TestParseEmptyText(t *testing.T) {
	c := NewChain()
	c.ParseSentence("")
	if !c.IsEmpty() || c.Len() != 2 {
		t.Errorf("empty text changed the chain: %d textlets, %d edges", c.Len(), c.NumEdges())
	}
}

func TestParseSentenceEdges(t *testing.T) {
	c := NewChain()
	c.ParseSentence("Nice tea, mate.")

	empty, _ := c.TryGetTextletIndex("")
	nice, _ := c.TryGetTextletIndex("Nice")
	mate, _ := c.TryGetTextletIndex("mate")
	dot, _ := c.TryGetTextletIndex(".")

	out := c.OutgoingEdges(BeginTextletID)
	if len(out) != 1 || out[0].Dst != nice || out[0].Punct != empty {
		t.Errorf("unexpected edges from Begin: %+v", out)
	}

	in := c.IncomingEdges(EndTextletID)
	if len(in) != 1 || in[0].Src != mate || in[0].Punct != dot {
		t.Errorf("unexpected edges into End: %+v", in)
	}

	if len(c.OutgoingEdges(EndTextletID)) != 0 {
		t.Error("End must never have outgoing edges")
	}
	if len(c.IncomingEdges(BeginTextletID)) != 0 {
		t.Error("Begin must never have incoming edges")
	}
}

func TestEdgeIndexesAgree(t *testing.T) {
	c := setupTrainedChain(t)

	for i, edge := range c.Edges() {
		found := false
		for _, out := range c.OutgoingEdges(edge.Src) {
			if out == edge {
				found = true
			}
		}
		if !found {
			t.Errorf("edge %d (%+v) missing from forward index", i, edge)
		}

		found = false
		for _, in := range c.IncomingEdges(edge.Dst) {
			if in.Src == edge.Src && in.Punct == edge.Punct {
				found = true
			}
		}
		if !found {
			t.Errorf("edge %d (%+v) missing from reverse index", i, edge)
		}
	}
}

func TestInterningIsStable(t *testing.T) {
	c := NewChain()
	a := c.EnsureTextletIndex("apple")
	b := c.EnsureTextletIndex("banana")
	if a == b {
		t.Fatal("distinct words share an id")
	}
	if again := c.EnsureTextletIndex("apple"); again != a {
		t.Errorf("re-interning returned %d, want %d", again, a)
	}
	if a <= EndTextletID || b <= EndTextletID {
		t.Errorf("interned ids collide with sentinels: %d, %d", a, b)
	}

	buf := []byte("cherry")
	id := c.EnsureTextletIndex(string(buf))
	buf[0] = 'X'
	if tok, _ := c.GetTextlet(id); tok.Text != "cherry" {
		t.Errorf("interned text changed to %q", tok.Text)
	}
}

func TestGetTextlet(t *testing.T) {
	c := NewChain()
	id := c.EnsureTextletIndex("lamb")

	testCases := []struct {
		name string
		id   int
		want Token
		ok   bool
	}{
		{"Begin", BeginTextletID, Token{Kind: TokenBegin}, true},
		{"End", EndTextletID, Token{Kind: TokenEnd}, true},
		{"Word", id, Token{Kind: TokenTextlet, Text: "lamb"}, true},
		{"Out of range", id + 1, Token{}, false},
		{"Negative", -1, Token{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := c.GetTextlet(tc.id)
			if ok != tc.ok || got != tc.want {
				t.Errorf("GetTextlet(%d) = %v, %v; want %v, %v", tc.id, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestEdgeAccessor(t *testing.T) {
	c := setupTrainedChain(t)
	if _, ok := c.Edge(-1); ok {
		t.Error("Edge(-1) should not exist")
	}
	if _, ok := c.Edge(c.NumEdges()); ok {
		t.Error("Edge(NumEdges()) should not exist")
	}
	first, ok := c.Edge(0)
	if !ok || first.Src != BeginTextletID {
		t.Errorf("Edge(0) = %+v, %v; want an edge leaving Begin", first, ok)
	}

	edges := c.Edges()
	edges[0].Hits = 1000
	if again, _ := c.Edge(0); again.Hits == 1000 {
		t.Error("Edges() must return a copy")
	}
}

func TestStats(t *testing.T) {
	c := NewChain()
	c.ParseSentence("a b")
	c.ParseSentence("a c")

	stats := c.Stats()
	// Begin-a, a-b, b-End, a-c, c-End
	if stats.Edges != 5 {
		t.Errorf("expected 5 edges, got %d", stats.Edges)
	}
	if stats.TotalHits != 6 {
		t.Errorf("expected 6 total hits, got %d", stats.TotalHits)
	}
	if stats.StartingWords != 1 {
		t.Errorf("expected 1 starting word, got %d", stats.StartingWords)
	}
	// Begin, a, b, c
	if stats.Seeds != 4 {
		t.Errorf("expected 4 seeds, got %d", stats.Seeds)
	}
	if stats.Textlets != c.Len() {
		t.Errorf("expected %d textlets, got %d", c.Len(), stats.Textlets)
	}
}

func BenchmarkParseSentence(b *testing.B) {
	corpus := createBenchmarkCorpus()
	b.SetBytes(int64(len(corpus)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := NewChain()
		c.ParseSentence(corpus)
	}
}
