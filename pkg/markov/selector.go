package markov

import (
	"fmt"
	"math"
	"strings"
)

// Direction is the way a traversal step follows edges.
type Direction uint8

const (
	// Forward follows edges from source to destination.
	Forward Direction = iota
	// Reverse follows edges from destination back to source.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// SelectionKind tells the chain how to interpret the weights a Selector
// returns.
type SelectionKind uint8

const (
	// SelectHighest picks the edge with the largest weight.
	SelectHighest SelectionKind = iota
	// SelectLowest picks the edge with the smallest weight.
	SelectLowest
	// SelectWeightedRandom treats weights as probability mass.
	SelectWeightedRandom
)

// Selector scores the candidate edges of a traversal step.
//
// Reset is called once before every step with the step's direction, so a
// stateful selector can clear per-step state. Weight is then called once per
// candidate edge, where from is the token at the cursor and to is the token
// the edge would move to. For Reverse steps, to is the edge's source.
type Selector interface {
	Reset(dir Direction)
	Weight(from, to, punct Token, hits int) float64
	SelectionKind() SelectionKind
}

// WeightedRandomSelector picks edges at random, proportionally to how often
// they were observed.
type WeightedRandomSelector struct{}

func (WeightedRandomSelector) Reset(Direction) {}

func (WeightedRandomSelector) Weight(_, _, _ Token, hits int) float64 {
	return float64(hits)
}

func (WeightedRandomSelector) SelectionKind() SelectionKind {
	return SelectWeightedRandom
}

// HighestSelector always follows the most observed edge.
type HighestSelector struct{}

func (HighestSelector) Reset(Direction) {}

func (HighestSelector) Weight(_, _, _ Token, hits int) float64 {
	return float64(hits)
}

func (HighestSelector) SelectionKind() SelectionKind {
	return SelectHighest
}

// LowestSelector always follows the least observed edge.
type LowestSelector struct{}

func (LowestSelector) Reset(Direction) {}

func (LowestSelector) Weight(_, _, _ Token, hits int) float64 {
	return float64(hits)
}

func (LowestSelector) SelectionKind() SelectionKind {
	return SelectLowest
}

// NaiveRandomSelector picks uniformly among edges, ignoring hit counts.
type NaiveRandomSelector struct{}

func (NaiveRandomSelector) Reset(Direction) {}

func (NaiveRandomSelector) Weight(_, _, _ Token, _ int) float64 {
	return 1
}

func (NaiveRandomSelector) SelectionKind() SelectionKind {
	return SelectWeightedRandom
}

// TemperatureSelector is a weighted random selector with adjustable
// randomness. A Temperature of 1.0 behaves like WeightedRandomSelector.
// Values > 1.0 flatten the distribution, values < 1.0 sharpen it, and a value
// of 0 or less always picks the most observed edge.
type TemperatureSelector struct {
	Temperature float64
}

func (s TemperatureSelector) Reset(Direction) {}

func (s TemperatureSelector) Weight(_, _, _ Token, hits int) float64 {
	if s.Temperature <= 0 {
		return float64(hits)
	}
	return math.Exp(math.Log(float64(hits)) / s.Temperature)
}

func (s TemperatureSelector) SelectionKind() SelectionKind {
	if s.Temperature <= 0 {
		return SelectHighest
	}
	return SelectWeightedRandom
}

// NewSelector builds a built-in selector by name: "weighted", "highest",
// "lowest", "naive" or "temperature". The temperature argument is only used
// by "temperature".
func NewSelector(name string, temperature float64) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "weighted", "weighted-random":
		return WeightedRandomSelector{}, nil
	case "highest":
		return HighestSelector{}, nil
	case "lowest":
		return LowestSelector{}, nil
	case "naive", "naive-random":
		return NaiveRandomSelector{}, nil
	case "temperature":
		return TemperatureSelector{Temperature: temperature}, nil
	default:
		return nil, fmt.Errorf("unknown selector %q", name)
	}
}

// pick applies kind to weights and returns the chosen position.
func (c *Chain) pick(kind SelectionKind, weights []float64) int {
	switch kind {
	case SelectHighest:
		best := 0
		for i, w := range weights {
			if w > weights[best] {
				best = i
			}
		}
		return best
	case SelectLowest:
		best := 0
		for i, w := range weights {
			if w < weights[best] {
				best = i
			}
		}
		return best
	default:
		var total float64
		for _, w := range weights {
			if w > 0 {
				total += w
			}
		}
		if !(total > 0) || math.IsInf(total, 1) {
			return c.randIntN(len(weights))
		}

		draw := c.randFloat64() * total
		var curr float64
		last := 0
		for i, w := range weights {
			if w <= 0 {
				continue
			}
			curr += w
			last = i
			if curr >= draw {
				return i
			}
		}
		// Rounding can leave curr a hair below draw.
		return last
	}
}
