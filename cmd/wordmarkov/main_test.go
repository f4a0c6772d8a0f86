package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSession creates a session without a database, using the highest
// selector so compositions are deterministic.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	config := DefaultConfig()
	config.Selector = "highest"
	session, err := NewSession(config, nil, discardLogger())
	require.NoError(t, err)
	return session
}

// newTestStoreSession creates a session backed by a fresh database.
func newTestStoreSession(t *testing.T, chainName string) *Session {
	t.Helper()
	db, store, err := openStore(filepath.Join(t.TempDir(), "chains.db")+"?_journal_mode=WAL&_busy_timeout=5000", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		_ = db.Close()
	})

	config := DefaultConfig()
	config.Selector = "highest"
	config.ChainName = chainName
	session, err := NewSession(config, store, discardLogger())
	require.NoError(t, err)
	return session
}
