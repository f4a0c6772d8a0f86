package markov

import (
	"context"
	"fmt"
	"log/slog"
)

// ComposeStream is ComposeSentence delivered token by token. The backward
// walk has to finish before the first token is known, so it runs before
// ComposeStream returns; the forward walk then runs in a goroutine that sends
// each token as soon as it is chosen. The channel is closed once the sentence
// is complete or ctx is cancelled.
//
// Errors that ComposeSentence would report are returned here, before any
// token is sent. The goroutine reads the chain, so the caller must not modify
// it until the channel is closed.
func (c *Chain) ComposeStream(ctx context.Context, seed Seed, sel Selector, maxLen int) (<-chan Token, error) {
	origin, err := c.composeOrigin(seed)
	if err != nil {
		return nil, err
	}

	front, total, err := c.walkBackward(origin, sel, maxLen, seed.kind == seedRandom)
	if err != nil {
		return nil, err
	}
	if origin != EndTextletID && len(c.forward[origin]) == 0 {
		return nil, fmt.Errorf("textlet %q (%s): %w", c.textlet(origin).String(), Forward, ErrDeadEnd)
	}

	tokenChan := make(chan Token)

	go func() {
		defer close(tokenChan)

		send := func(tok Token) bool {
			select {
			case <-ctx.Done():
				c.logger.DebugContext(ctx, "Composition stream cancelled by context")
				return false
			case tokenChan <- tok:
				return true
			}
		}

		for i := len(front) - 1; i >= 0; i-- {
			if !send(front[i]) {
				return
			}
		}
		if seedTok := c.textlet(origin); !seedTok.IsSentinel() {
			if !send(seedTok) {
				return
			}
		}

		if err := c.walkForward(origin, sel, maxLen, total, send); err != nil {
			c.logger.ErrorContext(ctx, "Forward walk failed in stream", slog.Any("error", err))
		}
	}()

	return tokenChan, nil
}
