package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS histories (
	doc_id     TEXT PRIMARY KEY,
	duration   INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS commands (
	doc_id  TEXT NOT NULL REFERENCES histories(doc_id) ON DELETE CASCADE,
	undone  INTEGER NOT NULL,
	seq     INTEGER NOT NULL,
	parent  TEXT NOT NULL,
	name    TEXT NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (doc_id, undone, seq)
);
`

// Store implements ports.HistoryStore on SQLite. Each command of a history
// is one row, so histories can be queried per command name.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save replaces the history of docID in one transaction.
func (s *Store) Save(ctx context.Context, docID string, h *ports.History) error {
	if strings.TrimSpace(docID) == "" {
		return fmt.Errorf("doc id is required")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM commands WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("clear commands: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO histories (doc_id, duration, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET duration = excluded.duration, updated_at = excluded.updated_at`,
		docID, int64(h.Duration), h.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO commands (doc_id, undone, seq, parent, name, payload) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for undone, envs := range [][]command.Envelope{h.Done, h.Undone} {
		for seq, env := range envs {
			if _, err := stmt.ExecContext(ctx, docID, undone, seq, env.Parent, env.Name, []byte(env.Payload)); err != nil {
				return fmt.Errorf("insert command %d: %w", seq, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads the history of docID.
func (s *Store) Load(ctx context.Context, docID string) (*ports.History, error) {
	var duration, updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT duration, updated_at FROM histories WHERE doc_id = ?`, docID,
	).Scan(&duration, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("get history: %w", err)
	}
	h := &ports.History{
		DocumentID: docID,
		Duration:   time.Duration(duration),
		UpdatedAt:  time.UnixMilli(updatedAt).UTC(),
		Done:       []command.Envelope{},
		Undone:     []command.Envelope{},
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT undone, parent, name, payload FROM commands WHERE doc_id = ? ORDER BY undone, seq`, docID)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var undone int
		var env command.Envelope
		var payload []byte
		if err := rows.Scan(&undone, &env.Parent, &env.Name, &payload); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		env.Payload = payload
		if undone != 0 {
			h.Undone = append(h.Undone, env)
		} else {
			h.Done = append(h.Done, env)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return h, nil
}

// Delete removes the history and its commands.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM histories WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

// List returns stored document ids in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT doc_id FROM histories ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	defer rows.Close()
	docs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan doc id: %w", err)
		}
		docs = append(docs, id)
	}
	return docs, rows.Err()
}

// CountCommands returns how many stored commands have the given name, across
// every document.
func (s *Store) CountCommands(ctx context.Context, name string) (int, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM commands WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count commands: %w", err)
	}
	return n, nil
}
