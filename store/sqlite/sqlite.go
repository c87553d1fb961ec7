// Package sqlite provides a durable ContextStore backed by a SQLite
// database file via the CGo-free modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/turnguard/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS turns (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL,
	conversation_id TEXT NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	ts              INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, seq);
`

// Store persists conversation turns in a single SQLite table. Append runs
// inside one transaction, which is the atomicity unit required for the
// user/assistant pair of a committed turn.
type Store struct {
	db *sql.DB
}

var _ core.ContextStore = (*Store)(nil)

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Append implements core.ContextStore. All turns are inserted in one
// transaction; a failed insert rolls the whole batch back.
func (s *Store) Append(ctx context.Context, conversationID string, turns ...core.Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO turns (id, conversation_id, role, content, ts) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range turns {
		if _, err := stmt.ExecContext(ctx, t.ID, conversationID, string(t.Role), t.Content, t.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("failed to insert turn: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// List implements core.ContextStore.
func (s *Store) List(ctx context.Context, conversationID string, limit int) ([]core.Turn, error) {
	query := "SELECT id, role, content, ts FROM turns WHERE conversation_id = ? ORDER BY seq"
	args := []any{conversationID}
	if limit > 0 {
		// Take the most recent rows, then restore chronological order.
		query = "SELECT id, role, content, ts FROM (SELECT seq, id, role, content, ts FROM turns WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?) ORDER BY seq"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		var role string
		var ts int64
		if err := rows.Scan(&t.ID, &role, &t.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		t.Role = core.Role(role)
		t.Timestamp = time.Unix(0, ts).UTC()
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return turns, nil
}

// Clear implements core.ContextStore.
func (s *Store) Clear(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM turns WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}
