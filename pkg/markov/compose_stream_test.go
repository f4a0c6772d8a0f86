package markov

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestComposeStream(t *testing.T) {
	c := NewChain()
	c.ParseSentence("Mary had a little lamb")

	tokenChan, err := c.ComposeStream(context.Background(), SeedWord("a"), HighestSelector{}, 0)
	if err != nil {
		t.Fatalf("ComposeStream() error = %v", err)
	}

	var got TokenList
	for tok := range tokenChan {
		got = append(got, tok)
	}

	want, err := c.ComposeSentence(SeedWord("a"), HighestSelector{}, 0)
	if err != nil {
		t.Fatalf("ComposeSentence() error = %v", err)
	}
	if got.String() != want.String() || len(got) != len(want) {
		t.Errorf("stream produced %q (%d tokens), want %q (%d tokens)", got.String(), len(got), want.String(), len(want))
	}
}

func TestComposeStreamErrors(t *testing.T) {
	if _, err := NewChain().ComposeStream(context.Background(), RandomSeed(), HighestSelector{}, 0); !errors.Is(err, ErrEmptyChain) {
		t.Errorf("expected ErrEmptyChain, got %v", err)
	}

	c := NewChain()
	c.ParseSentence("a w x")
	c.ParseSentence("a w y")
	c.Prune(1)
	if _, err := c.ComposeStream(context.Background(), SeedWord("w"), HighestSelector{}, 0); !errors.Is(err, ErrDeadEnd) {
		t.Errorf("expected ErrDeadEnd, got %v", err)
	}
}

func TestComposeStreamCancel(t *testing.T) {
	c := NewChain()
	c.ParseSentence("one two three four five six seven eight nine ten")

	ctx, cancel := context.WithCancel(context.Background())
	tokenChan, err := c.ComposeStream(ctx, SeedID(BeginTextletID), HighestSelector{}, 0)
	if err != nil {
		t.Fatalf("ComposeStream() error = %v", err)
	}

	<-tokenChan
	cancel()
	// Nobody receives for a while, so the sender can only see ctx.Done.
	time.Sleep(20 * time.Millisecond)

	var rest int
	for range tokenChan {
		rest++
	}
	if rest != 0 {
		t.Errorf("received %d tokens after cancellation", rest)
	}
}
