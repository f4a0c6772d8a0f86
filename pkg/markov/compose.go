package markov

import (
	"errors"
	"fmt"
	"log/slog"
)

// Step is the outcome of one traversal step: the textlet moved to and the
// punctuation between it and the textlet moved from.
type Step struct {
	Dest    Token
	Punct   Token
	DestID  int
	PunctID int
}

// SelectNextWord resolves seed and takes one step from it in direction dir,
// letting sel choose among the candidate edges.
func (c *Chain) SelectNextWord(seed Seed, sel Selector, dir Direction) (Step, error) {
	from, err := c.resolveSeed(seed)
	if err != nil {
		return Step{}, err
	}

	var candidates []int
	if dir == Reverse {
		candidates = c.reverse[from]
	} else {
		candidates = c.forward[from]
	}
	if len(candidates) == 0 {
		return Step{}, fmt.Errorf("textlet %q (%s): %w", c.textlet(from).String(), dir, ErrDeadEnd)
	}

	sel.Reset(dir)
	fromTok := c.textlet(from)
	weights := make([]float64, len(candidates))
	for i, idx := range candidates {
		edge := c.edges[idx]
		weights[i] = sel.Weight(fromTok, c.textlet(c.otherEnd(edge, dir)), c.textlet(edge.Punct), edge.Hits)
	}

	edge := c.edges[candidates[c.pick(sel.SelectionKind(), weights)]]
	dest := c.otherEnd(edge, dir)
	return Step{
		Dest:    c.textlet(dest),
		Punct:   c.textlet(edge.Punct),
		DestID:  dest,
		PunctID: edge.Punct,
	}, nil
}

// otherEnd returns the textlet a step along edge in direction dir lands on.
func (c *Chain) otherEnd(edge Edge, dir Direction) int {
	if dir == Reverse {
		return edge.Src
	}
	return edge.Dst
}

// ComposeSentence grows a sentence outwards from seed. It first walks
// backwards towards Begin, then forwards towards End, picking each step with
// sel. Begin and End themselves never appear in the result.
//
// If maxLen > 0, the backward walk stops before the sentence would exceed
// maxLen/2 characters and the forward walk stops before it would exceed
// maxLen. Both walks count against the same running length, so the forward
// walk may use whatever the backward walk left over.
//
// With maxLen <= 0 the walk only ends at Begin and End. The caller must
// trust its corpus to reach them, since a cycle can otherwise loop forever.
func (c *Chain) ComposeSentence(seed Seed, sel Selector, maxLen int) (TokenList, error) {
	origin, err := c.composeOrigin(seed)
	if err != nil {
		return nil, err
	}

	front, total, err := c.walkBackward(origin, sel, maxLen, seed.kind == seedRandom)
	if err != nil {
		return nil, err
	}

	out := make(TokenList, 0, 2*len(front)+1)
	for i := len(front) - 1; i >= 0; i-- {
		out = append(out, front[i])
	}
	if seedTok := c.textlet(origin); !seedTok.IsSentinel() {
		out = append(out, seedTok)
	}

	err = c.walkForward(origin, sel, maxLen, total, func(tok Token) bool {
		out = append(out, tok)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// composeOrigin checks the chain can be walked and resolves seed.
func (c *Chain) composeOrigin(seed Seed) (int, error) {
	if c.IsEmpty() {
		return 0, fmt.Errorf("cannot compose: %w", ErrEmptyChain)
	}
	return c.resolveSeed(seed)
}

// walkBackward walks from origin towards Begin. It returns the tokens in
// reverse order together with the running length, seed included. If
// mayStart is set, an origin with no incoming edges starts the sentence
// instead of failing.
func (c *Chain) walkBackward(origin int, sel Selector, maxLen int, mayStart bool) (TokenList, int, error) {
	total := c.textlet(origin).Len()

	// front is kept in reverse order and flipped by the caller.
	var front TokenList
	cursor := origin
	for steps := 0; cursor != BeginTextletID; steps++ {
		step, err := c.SelectNextWord(SeedID(cursor), sel, Reverse)
		if err != nil {
			if !errors.Is(err, ErrDeadEnd) || (steps == 0 && !mayStart) {
				return nil, 0, err
			}
			c.logger.Debug("Backward walk hit a dead end", slog.Int("textlet_id", cursor))
			break
		}

		next := total + step.Punct.Len() + step.Dest.Len()
		if maxLen > 0 && 2*next > maxLen {
			c.logger.Debug("Backward walk stopped by length budget",
				slog.Int("max_length", maxLen),
				slog.Int("length", total),
			)
			break
		}

		front = append(front, step.Punct)
		total = next
		if step.DestID == BeginTextletID {
			break
		}
		front = append(front, step.Dest)
		cursor = step.DestID
	}
	return front, total, nil
}

// walkForward walks from origin towards End, starting from a running length
// of total, and hands every token to emit in order. It stops early if emit
// returns false.
func (c *Chain) walkForward(origin int, sel Selector, maxLen, total int, emit func(Token) bool) error {
	cursor := origin
	for steps := 0; cursor != EndTextletID; steps++ {
		step, err := c.SelectNextWord(SeedID(cursor), sel, Forward)
		if err != nil {
			if steps == 0 || !errors.Is(err, ErrDeadEnd) {
				return err
			}
			c.logger.Debug("Forward walk hit a dead end", slog.Int("textlet_id", cursor))
			return nil
		}

		next := total + step.Punct.Len() + step.Dest.Len()
		if maxLen > 0 && next > maxLen {
			c.logger.Debug("Forward walk stopped by length budget",
				slog.Int("max_length", maxLen),
				slog.Int("length", total),
			)
			return nil
		}

		if !emit(step.Punct) {
			return nil
		}
		total = next
		if step.DestID == EndTextletID {
			return nil
		}
		if !emit(step.Dest) {
			return nil
		}
		cursor = step.DestID
	}
	return nil
}

// ComposeFromString seeds a composition from prompt: one of the prompt's
// words that the chain knows is picked at random. If the prompt holds no
// known word, a random seed is used instead.
func (c *Chain) ComposeFromString(prompt string, sel Selector, maxLen int) (TokenList, error) {
	var known []string
	lex := NewLexer(prompt)
	for {
		tok, ok := lex.Next()
		if !ok {
			break
		}
		if tok.Kind != TokenWord {
			continue
		}
		if id, ok := c.TryGetTextletIndex(tok.Text); ok && len(c.forward[id]) > 0 {
			known = append(known, tok.Text)
		}
	}

	seed := RandomSeed()
	if len(known) > 0 {
		seed = SeedWord(known[c.randIntN(len(known))])
	}
	return c.ComposeSentence(seed, sel, maxLen)
}
