package markov

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
)

const (
	// BeginTextletID is the reserved id of the Begin sentinel.
	BeginTextletID = 0
	// EndTextletID is the reserved id of the End sentinel.
	EndTextletID = 1
	// BeginTextletText is the placeholder text for Begin in exports.
	BeginTextletText = "<BEGIN>"
	// EndTextletText is the placeholder text for End in exports.
	EndTextletText = "<END>"
)

// Edge is an observed transition from textlet Src to textlet Dst, separated by
// the punctuation textlet Punct, seen Hits times.
type Edge struct {
	Src   int
	Dst   int
	Punct int
	Hits  int
}

// Chain is a directed multigraph of textlets. Every distinct word or
// punctuation run gets a stable id; edges live in one flat list, addressed
// by index from a forward index (by source) and a reverse index (by
// destination).
type Chain struct {
	textlets []string
	indices  map[string]int

	// seeds holds every textlet id with at least one outgoing edge.
	seeds   []int
	seedSet map[int]struct{}

	edges   []Edge
	forward map[int][]int
	reverse map[int][]int

	rng    *rand.Rand
	logger *slog.Logger
}

// NewChain returns an empty chain holding only the Begin and End sentinels.
func NewChain() *Chain {
	return &Chain{
		textlets: []string{"", ""},
		indices:  make(map[string]int),
		seedSet:  make(map[int]struct{}),
		forward:  make(map[int][]int),
		reverse:  make(map[int][]int),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Chain. By default, all logs are discarded.
func (c *Chain) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetRand replaces the random source used for seed and edge selection. A nil
// source restores the default, goroutine-safe global source. A custom source
// is not synchronised by the chain.
func (c *Chain) SetRand(r *rand.Rand) {
	c.rng = r
}

func (c *Chain) randIntN(n int) int {
	if c.rng != nil {
		return c.rng.IntN(n)
	}
	return rand.IntN(n)
}

func (c *Chain) randFloat64() float64 {
	if c.rng != nil {
		return c.rng.Float64()
	}
	return rand.Float64()
}

// EnsureTextletIndex returns the id of word, interning it first if needed.
func (c *Chain) EnsureTextletIndex(word string) int {
	if id, ok := c.indices[word]; ok {
		return id
	}
	// Interned text must not alias the caller's buffer.
	owned := strings.Clone(word)
	id := len(c.textlets)
	c.textlets = append(c.textlets, owned)
	c.indices[owned] = id
	return id
}

// ensureTextletFromToken maps sentinels to their reserved ids and interns
// everything else.
func (c *Chain) ensureTextletFromToken(tok Token) int {
	switch tok.Kind {
	case TokenBegin:
		return BeginTextletID
	case TokenEnd:
		return EndTextletID
	default:
		return c.EnsureTextletIndex(tok.Text)
	}
}

// TryGetTextletIndex looks up the id of word without interning it.
func (c *Chain) TryGetTextletIndex(word string) (int, bool) {
	id, ok := c.indices[word]
	return id, ok
}

// GetTextlet resolves an id back to a token. Sentinel ids resolve to Begin and
// End tokens, everything else to a TokenTextlet.
func (c *Chain) GetTextlet(id int) (Token, bool) {
	switch {
	case id == BeginTextletID:
		return Token{Kind: TokenBegin}, true
	case id == EndTextletID:
		return Token{Kind: TokenEnd}, true
	case id > EndTextletID && id < len(c.textlets):
		return Token{Kind: TokenTextlet, Text: c.textlets[id]}, true
	default:
		return Token{}, false
	}
}

// textlet is GetTextlet for ids known to be valid.
func (c *Chain) textlet(id int) Token {
	tok, _ := c.GetTextlet(id)
	return tok
}

// ParseSentence lexes text and registers an edge for every
// (word, punctuation, word) triple in it, counting Begin and End as words.
// Parsing the same text again increases hit counts without adding edges.
func (c *Chain) ParseSentence(text string) {
	if text == "" {
		return
	}

	lex := NewLexer(text)
	curr, ok := lex.Next()
	if !ok {
		return
	}

	for curr.Kind != TokenEnd {
		punct, ok := lex.Next()
		if !ok || punct.Kind != TokenPunct {
			c.logger.Debug("Stopped parsing on malformed token stream", slog.String("text", text))
			return
		}
		next, ok := lex.Next()
		if !ok || next.Kind == TokenPunct {
			c.logger.Debug("Stopped parsing on malformed token stream", slog.String("text", text))
			return
		}

		src := c.ensureTextletFromToken(curr)
		pct := c.ensureTextletFromToken(punct)
		dst := c.ensureTextletFromToken(next)
		c.registerEdge(src, dst, pct, 1)

		curr = next
	}
}

// registerEdge adds hits to the (src, dst, punct) edge, creating it if it
// has not been seen before.
func (c *Chain) registerEdge(src, dst, punct, hits int) {
	if _, ok := c.seedSet[src]; !ok {
		c.seedSet[src] = struct{}{}
		c.seeds = append(c.seeds, src)
	}

	for _, idx := range c.forward[src] {
		edge := &c.edges[idx]
		if edge.Dst == dst && edge.Punct == punct {
			edge.Hits += hits
			return
		}
	}

	idx := len(c.edges)
	c.edges = append(c.edges, Edge{Src: src, Dst: dst, Punct: punct, Hits: hits})
	c.forward[src] = append(c.forward[src], idx)

	for _, ridx := range c.reverse[dst] {
		other := c.edges[ridx]
		if other.Src == src && other.Punct == punct {
			return
		}
	}
	c.reverse[dst] = append(c.reverse[dst], idx)
}

// NumTextlets returns the number of textlets, sentinels included.
func (c *Chain) NumTextlets() int {
	return len(c.textlets)
}

// NumEdges returns the number of distinct edges.
func (c *Chain) NumEdges() int {
	return len(c.edges)
}

// Len returns the number of textlets, sentinels included.
func (c *Chain) Len() int {
	return c.NumTextlets()
}

// IsEmpty reports whether no edge has been registered yet. The two sentinels
// always exist, so this says nothing about textlets.
func (c *Chain) IsEmpty() bool {
	return len(c.edges) == 0
}

// Edge returns the edge at storage index i.
func (c *Chain) Edge(i int) (Edge, bool) {
	if i < 0 || i >= len(c.edges) {
		return Edge{}, false
	}
	return c.edges[i], true
}

// Edges returns a copy of every edge in storage order.
func (c *Chain) Edges() []Edge {
	out := make([]Edge, len(c.edges))
	copy(out, c.edges)
	return out
}

// OutgoingEdges returns copies of the edges leaving id, in storage order.
func (c *Chain) OutgoingEdges(id int) []Edge {
	return c.collect(c.forward[id])
}

// IncomingEdges returns copies of the edges arriving at id, in storage order.
func (c *Chain) IncomingEdges(id int) []Edge {
	return c.collect(c.reverse[id])
}

func (c *Chain) collect(indices []int) []Edge {
	out := make([]Edge, 0, len(indices))
	for _, idx := range indices {
		out = append(out, c.edges[idx])
	}
	return out
}
