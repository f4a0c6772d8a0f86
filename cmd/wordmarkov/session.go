package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/CTAG07/wordmarkov/pkg/markov"
)

// Session owns the live chain. The chain itself is not safe for concurrent
// use, so every access from the REPL and the API goes through mu: writers
// (parse, train, prune, import) take the write lock, composition takes the
// read lock.
type Session struct {
	mu        sync.RWMutex
	chain     *markov.Chain
	selector  markov.Selector
	selName   string
	temp      float64
	maxLength int
	chainName string
	store     *markov.Store
	logger    *slog.Logger
}

// NewSession creates a session around an empty chain using the selector and
// limits from config. store may be nil, in which case Save and Load fail.
func NewSession(config *Config, store *markov.Store, logger *slog.Logger) (*Session, error) {
	sel, err := markov.NewSelector(config.Selector, config.Temperature)
	if err != nil {
		return nil, err
	}
	chain := markov.NewChain()
	chain.SetLogger(logger)
	return &Session{
		chain:     chain,
		selector:  sel,
		selName:   config.Selector,
		temp:      config.Temperature,
		maxLength: config.MaxLength,
		chainName: config.ChainName,
		store:     store,
		logger:    logger,
	}, nil
}

// Parse feeds a single sentence into the chain. Empty text is ignored.
func (s *Session) Parse(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.ParseSentence(text)
}

// Train feeds every line of data into the chain.
func (s *Session) Train(ctx context.Context, data io.Reader) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Train(ctx, data)
}

// TrainFiles trains on each file in paths. A file that cannot be read is
// logged and skipped. It returns the total number of lines parsed.
func (s *Session) TrainFiles(ctx context.Context, paths []string) int {
	var total int
	for _, path := range paths {
		lines, err := s.trainFile(ctx, path)
		total += lines
		if err != nil {
			s.logger.Warn("Error reading corpus file", "path", path, "error", err)
			continue
		}
		s.logger.Info("Corpus file parsed", "path", path, "lines", lines)
	}
	return total
}

func (s *Session) trainFile(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)
	return s.Train(ctx, file)
}

// Compose answers prompt with a new sentence seeded from one of its words.
// A non-positive maxLength uses the session's limit.
func (s *Session) Compose(prompt string, maxLength int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if maxLength <= 0 {
		maxLength = s.maxLength
	}
	out, err := s.chain.ComposeFromString(prompt, s.selector, maxLength)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// ComposeFrom composes a sentence from an explicit seed word, or from a random
// seed when word is empty. A non-positive maxLength uses the session's limit.
func (s *Session) ComposeFrom(word string, maxLength int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if maxLength <= 0 {
		maxLength = s.maxLength
	}
	seed := markov.RandomSeed()
	if word != "" {
		seed = markov.SeedWord(word)
	}
	out, err := s.chain.ComposeSentence(seed, s.selector, maxLength)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// SetSelector swaps the selector used for composition.
func (s *Session) SetSelector(name string, temperature float64) error {
	sel, err := markov.NewSelector(name, temperature)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector = sel
	s.selName = name
	s.temp = temperature
	s.logger.Info("Selector changed", "selector", name, "temperature", temperature)
	return nil
}

// Temperature returns the temperature the active selector was built with.
func (s *Session) Temperature() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.temp
}

// SelectorName returns the name of the active selector.
func (s *Session) SelectorName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selName
}

// Prune removes edges observed minHits times or fewer.
func (s *Session) Prune(minHits int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Prune(minHits)
}

// Stats returns the chain's statistics.
func (s *Session) Stats() markov.ChainStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain.Stats()
}

// Export writes the chain as JSON.
func (s *Session) Export(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain.Export(w)
}

// Import merges a JSON chain into the live chain.
func (s *Session) Import(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Import(r)
}

// Save writes the chain to the database under the configured name.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.New("no database configured")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.SaveChain(ctx, s.chainName, s.chain)
}

// Load replaces the live chain with the one stored under the configured name.
// A chain that was never saved leaves the session untouched and is not an
// error.
func (s *Session) Load(ctx context.Context) error {
	if s.store == nil {
		return errors.New("no database configured")
	}
	chain, err := s.store.LoadChain(ctx, s.chainName)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Info("No stored chain found, starting empty", "chain_name", s.chainName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load chain: %w", err)
	}
	chain.SetLogger(s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain = chain
	return nil
}

// StreamTo composes a sentence from word (random when empty) and writes each
// token to w as soon as it is chosen, calling flush after every token when
// flush is not nil. The chain stays read-locked until the sentence is done.
func (s *Session) StreamTo(ctx context.Context, w io.Writer, flush func(), word string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seed := markov.RandomSeed()
	if word != "" {
		seed = markov.SeedWord(word)
	}
	tokenChan, err := s.chain.ComposeStream(ctx, seed, s.selector, s.maxLength)
	if err != nil {
		return err
	}
	for tok := range tokenChan {
		if _, err = io.WriteString(w, tok.String()); err != nil {
			// Drain so the composing goroutine can finish.
			for range tokenChan {
			}
			return err
		}
		if flush != nil {
			flush()
		}
	}
	return ctx.Err()
}
