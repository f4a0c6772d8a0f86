package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CTAG07/wordmarkov/pkg/markov"
	"github.com/natefinch/atomic"
	"github.com/ulikunitz/xz"
)

// isCompressed reports whether a snapshot path asks for xz compression.
func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xz")
}

// SaveSnapshot writes the chain to path as JSON, xz-compressed when the name
// ends in .xz. The file is replaced atomically.
func (s *Session) SaveSnapshot(path string) error {
	var buf bytes.Buffer
	if isCompressed(path) {
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("failed to create xz writer: %w", err)
		}
		if err = s.Export(w); err != nil {
			return fmt.Errorf("failed to export chain: %w", err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("failed to finish xz stream: %w", err)
		}
	} else if err := s.Export(&buf); err != nil {
		return fmt.Errorf("failed to export chain: %w", err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	s.logger.Info("Snapshot saved", "path", path, "bytes", buf.Len())
	return nil
}

// LoadSnapshot replaces the live chain with the one stored at path. On error
// the live chain is untouched.
func (s *Session) LoadSnapshot(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	var r io.Reader = file
	if isCompressed(path) {
		if r, err = xz.NewReader(file); err != nil {
			return fmt.Errorf("failed to read xz stream: %w", err)
		}
	}

	chain := markov.NewChain()
	chain.SetLogger(s.logger)
	if err = chain.Import(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain = chain
	s.logger.Info("Snapshot loaded", "path", path)
	return nil
}
