package markov

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SetupSchema initializes the tables a Store needs. It should be called once
// on a new database before any other Store operation. It is idempotent and
// safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaChains = `
CREATE TABLE IF NOT EXISTS wordmarkov_chains (
    chain_id INTEGER PRIMARY KEY,
    chain_name TEXT NOT NULL UNIQUE
);
`
		schemaTextlets = `
CREATE TABLE IF NOT EXISTS wordmarkov_textlets (
    chain_id INTEGER NOT NULL,
    textlet_id INTEGER NOT NULL,
    textlet_text TEXT NOT NULL,
    PRIMARY KEY (chain_id, textlet_id)
);
`
		schemaEdges = `
CREATE TABLE IF NOT EXISTS wordmarkov_edges (
    chain_id INTEGER NOT NULL,
    edge_index INTEGER NOT NULL,
    src_id INTEGER NOT NULL,
    dst_id INTEGER NOT NULL,
    punct_id INTEGER NOT NULL,
    hits INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (chain_id, edge_index)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaChains); err != nil {
		return fmt.Errorf("could not create chains schema: %w", err)
	}

	if _, err = tx.Exec(schemaTextlets); err != nil {
		return fmt.Errorf("could not create textlets schema: %w", err)
	}

	if _, err = tx.Exec(schemaEdges); err != nil {
		return fmt.Errorf("could not create edges schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Store persists named Chains in a SQLite database. It holds prepared
// statements for the common lookups.
type Store struct {
	db              *sql.DB
	stmtGetChainID  *sql.Stmt
	stmtListChains  *sql.Stmt
	stmtGetTextlets *sql.Stmt
	stmtGetEdges    *sql.Stmt
	stmtAddChain    *sql.Stmt
	stmtInsertText  *sql.Stmt
	stmtInsertEdge  *sql.Stmt
	stmtClearText   *sql.Stmt
	stmtClearEdges  *sql.Stmt
	stmtRemoveChain *sql.Stmt
	logger          *slog.Logger
}

// NewStore creates a Store on db, which must already hold the schema from
// SetupSchema. It returns an error if any statement fails to prepare.
func NewStore(db *sql.DB) (*Store, error) {
	stmtGetChainID, err := db.Prepare(`SELECT chain_id FROM wordmarkov_chains WHERE chain_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtListChains, err := db.Prepare(`SELECT chain_name FROM wordmarkov_chains ORDER BY chain_name;`)
	if err != nil {
		return nil, err
	}

	stmtGetTextlets, err := db.Prepare(`SELECT textlet_id, textlet_text FROM wordmarkov_textlets WHERE chain_id = ? ORDER BY textlet_id;`)
	if err != nil {
		return nil, err
	}

	stmtGetEdges, err := db.Prepare(`SELECT src_id, dst_id, punct_id, hits FROM wordmarkov_edges WHERE chain_id = ? ORDER BY edge_index;`)
	if err != nil {
		return nil, err
	}

	stmtAddChain, err := db.Prepare(`INSERT INTO wordmarkov_chains (chain_name) VALUES (?) ON CONFLICT(chain_name) DO UPDATE SET chain_name=excluded.chain_name RETURNING chain_id;`)
	if err != nil {
		return nil, err
	}

	stmtInsertText, err := db.Prepare(`INSERT INTO wordmarkov_textlets (chain_id, textlet_id, textlet_text) VALUES (?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtInsertEdge, err := db.Prepare(`INSERT INTO wordmarkov_edges (chain_id, edge_index, src_id, dst_id, punct_id, hits) VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtClearText, err := db.Prepare(`DELETE FROM wordmarkov_textlets WHERE chain_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtClearEdges, err := db.Prepare(`DELETE FROM wordmarkov_edges WHERE chain_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtRemoveChain, err := db.Prepare(`DELETE FROM wordmarkov_chains WHERE chain_id = ?;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:              db,
		stmtGetChainID:  stmtGetChainID,
		stmtListChains:  stmtListChains,
		stmtGetTextlets: stmtGetTextlets,
		stmtGetEdges:    stmtGetEdges,
		stmtAddChain:    stmtAddChain,
		stmtInsertText:  stmtInsertText,
		stmtInsertEdge:  stmtInsertEdge,
		stmtClearText:   stmtClearText,
		stmtClearEdges:  stmtClearEdges,
		stmtRemoveChain: stmtRemoveChain,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store. The database
// itself is left open.
func (s *Store) Close() {
	_ = s.stmtGetChainID.Close()
	_ = s.stmtListChains.Close()
	_ = s.stmtGetTextlets.Close()
	_ = s.stmtGetEdges.Close()
	_ = s.stmtAddChain.Close()
	_ = s.stmtInsertText.Close()
	_ = s.stmtInsertEdge.Close()
	_ = s.stmtClearText.Close()
	_ = s.stmtClearEdges.Close()
	_ = s.stmtRemoveChain.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// ListChains returns the names of all stored chains, sorted.
func (s *Store) ListChains(ctx context.Context) ([]string, error) {
	rows, err := s.stmtListChains.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// SaveChain stores c under name, replacing whatever was stored under that
// name before. The operation is performed within a transaction.
func (s *Store) SaveChain(ctx context.Context, name string, c *Chain) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for save: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	var chainID int
	if err = tx.StmtContext(ctx, s.stmtAddChain).QueryRowContext(ctx, name).Scan(&chainID); err != nil {
		return fmt.Errorf("failed to get/insert chain '%s': %w", name, err)
	}

	if _, err = tx.StmtContext(ctx, s.stmtClearEdges).ExecContext(ctx, chainID); err != nil {
		return fmt.Errorf("failed to clear edges for chain '%s': %w", name, err)
	}
	if _, err = tx.StmtContext(ctx, s.stmtClearText).ExecContext(ctx, chainID); err != nil {
		return fmt.Errorf("failed to clear textlets for chain '%s': %w", name, err)
	}

	stmtInsertText := tx.StmtContext(ctx, s.stmtInsertText)
	for id := EndTextletID + 1; id < len(c.textlets); id++ {
		if _, err = stmtInsertText.ExecContext(ctx, chainID, id, c.textlets[id]); err != nil {
			return fmt.Errorf("failed to insert textlet %d: %w", id, err)
		}
	}

	stmtInsertEdge := tx.StmtContext(ctx, s.stmtInsertEdge)
	for i, edge := range c.edges {
		if _, err = stmtInsertEdge.ExecContext(ctx, chainID, i, edge.Src, edge.Dst, edge.Punct, edge.Hits); err != nil {
			return fmt.Errorf("failed to insert edge (%d -> %d): %w", edge.Src, edge.Dst, err)
		}
	}

	s.logger.InfoContext(ctx, "Chain saved",
		slog.String("chain_name", name),
		slog.Int("chain_id", chainID),
		slog.Int("textlets_saved", len(c.textlets)),
		slog.Int("edges_saved", len(c.edges)),
	)

	return tx.Commit()
}

// LoadChain rebuilds the chain stored under name, with the same textlet ids
// and edge order it was saved with. An unknown name returns an error wrapping
// sql.ErrNoRows.
func (s *Store) LoadChain(ctx context.Context, name string) (*Chain, error) {
	var chainID int
	if err := s.stmtGetChainID.QueryRowContext(ctx, name).Scan(&chainID); err != nil {
		return nil, fmt.Errorf("could not find chain '%s': %w", name, err)
	}

	c := NewChain()

	tRows, err := s.stmtGetTextlets.QueryContext(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("could not query textlets for chain '%s': %w", name, err)
	}
	for tRows.Next() {
		var id int
		var text string
		if err = tRows.Scan(&id, &text); err != nil {
			_ = tRows.Close()
			return nil, err
		}
		if got := c.EnsureTextletIndex(text); got != id {
			_ = tRows.Close()
			return nil, fmt.Errorf("consistency error: textlet %q stored as %d but rebuilt as %d", text, id, got)
		}
	}
	_ = tRows.Close()
	if err = tRows.Err(); err != nil {
		return nil, err
	}

	eRows, err := s.stmtGetEdges.QueryContext(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("could not query edges for chain '%s': %w", name, err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(eRows)

	for eRows.Next() {
		var edge Edge
		if err = eRows.Scan(&edge.Src, &edge.Dst, &edge.Punct, &edge.Hits); err != nil {
			return nil, err
		}
		if err = checkEdge(c.textlets, edge); err != nil {
			return nil, fmt.Errorf("consistency error: edge %d -> %d %w", edge.Src, edge.Dst, err)
		}
		c.registerEdge(edge.Src, edge.Dst, edge.Punct, edge.Hits)
	}
	if err = eRows.Err(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Chain loaded",
		slog.String("chain_name", name),
		slog.Int("chain_id", chainID),
		slog.Int("textlets_loaded", len(c.textlets)),
		slog.Int("edges_loaded", len(c.edges)),
	)
	return c, nil
}

// RemoveChain deletes a chain and all of its textlets and edges. Removing an
// unknown name is not an error.
func (s *Store) RemoveChain(ctx context.Context, name string) error {
	var chainID int
	err := s.stmtGetChainID.QueryRowContext(ctx, name).Scan(&chainID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not find chain '%s': %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.StmtContext(ctx, s.stmtClearEdges).ExecContext(ctx, chainID); err != nil {
		return fmt.Errorf("failed to remove edges for chain %d: %w", chainID, err)
	}
	if _, err = tx.StmtContext(ctx, s.stmtClearText).ExecContext(ctx, chainID); err != nil {
		return fmt.Errorf("failed to remove textlets for chain %d: %w", chainID, err)
	}
	if _, err = tx.StmtContext(ctx, s.stmtRemoveChain).ExecContext(ctx, chainID); err != nil {
		return fmt.Errorf("failed to remove chain %d: %w", chainID, err)
	}

	s.logger.InfoContext(ctx, "Chain removed",
		slog.String("chain_name", name),
		slog.Int("chain_id", chainID),
	)
	return tx.Commit()
}
