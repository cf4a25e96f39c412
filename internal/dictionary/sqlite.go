package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pronunciations (
	word    TEXT    NOT NULL,
	variant INTEGER NOT NULL,
	phones  TEXT    NOT NULL,
	PRIMARY KEY (word, variant)
)`

// SQLite is a Source backed by an embedded SQLite database.
type SQLite struct {
	db     *sql.DB
	closed atomic.Bool
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc serializes writes per connection; one connection avoids SQLITE_BUSY on import.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Lookup(ctx context.Context, word string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT phones FROM pronunciations WHERE word = ? ORDER BY variant`, word)
	if err != nil {
		return nil, fmt.Errorf("sqlite lookup %q: %w", word, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var phones string
		if err := rows.Scan(&phones); err != nil {
			return nil, fmt.Errorf("sqlite scan %q: %w", word, err)
		}
		out = append(out, phones)
	}
	return out, rows.Err()
}

// Import copies all entries of m in a single transaction. Existing
// (word, variant) rows are left untouched. Returns the number of rows inserted.
func (s *SQLite) Import(ctx context.Context, m *Memory) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO pronunciations (word, variant, phones) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, e := range m.Entries() {
		res, err := stmt.ExecContext(ctx, e.Word, e.Variant, e.Phones)
		if err != nil {
			return 0, fmt.Errorf("import %q: %w", e.Word, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return inserted, nil
}

// Count returns the number of distinct words stored.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT word) FROM pronunciations`).Scan(&n)
	return n, err
}

func (s *SQLite) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
