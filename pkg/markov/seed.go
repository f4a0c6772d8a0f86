package markov

import (
	"errors"
	"fmt"
)

var (
	// ErrSeedNotFound is returned when a seed word or id is unknown to the chain.
	ErrSeedNotFound = errors.New("seed not found in chain")
	// ErrDeadEnd is returned when a textlet has no edges in the requested direction.
	ErrDeadEnd = errors.New("textlet is not connected in this direction")
	// ErrEmptyChain is returned when composing from a chain with no edges.
	ErrEmptyChain = errors.New("chain has no edges")
)

type seedKind uint8

const (
	seedRandom seedKind = iota
	seedWord
	seedID
)

// Seed names the textlet a traversal starts from. The zero Seed is random.
type Seed struct {
	kind seedKind
	word string
	id   int
}

// SeedWord seeds from an existing textlet by its text.
func SeedWord(word string) Seed {
	return Seed{kind: seedWord, word: word}
}

// SeedID seeds from a textlet id.
func SeedID(id int) Seed {
	return Seed{kind: seedID, id: id}
}

// RandomSeed seeds from a uniformly chosen textlet that has at least one
// outgoing edge, so a walk never starts from a dead end. If the textlet has
// lost its incoming edges to Prune or Import, it starts the sentence.
func RandomSeed() Seed {
	return Seed{kind: seedRandom}
}

func (s Seed) String() string {
	switch s.kind {
	case seedWord:
		return fmt.Sprintf("word %q", s.word)
	case seedID:
		return fmt.Sprintf("id %d", s.id)
	default:
		return "random"
	}
}

// resolveSeed turns a Seed into a textlet id.
func (c *Chain) resolveSeed(seed Seed) (int, error) {
	switch seed.kind {
	case seedWord:
		id, ok := c.TryGetTextletIndex(seed.word)
		if !ok {
			return 0, fmt.Errorf("seed word %q: %w", seed.word, ErrSeedNotFound)
		}
		return id, nil
	case seedID:
		if seed.id < 0 || seed.id >= len(c.textlets) {
			return 0, fmt.Errorf("seed id %d: %w", seed.id, ErrSeedNotFound)
		}
		return seed.id, nil
	default:
		if len(c.seeds) == 0 {
			return 0, fmt.Errorf("random seed: %w", ErrEmptyChain)
		}
		return c.seeds[c.randIntN(len(c.seeds))], nil
	}
}
