package dictionary

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema:
//
//	CREATE TABLE pronunciations (
//	  word    TEXT    NOT NULL,
//	  variant INTEGER NOT NULL,
//	  phones  TEXT    NOT NULL,
//	  PRIMARY KEY (word, variant)
//	);
const postgresSchema = `
CREATE TABLE IF NOT EXISTS pronunciations (
	word    TEXT    NOT NULL,
	variant INTEGER NOT NULL,
	phones  TEXT    NOT NULL,
	PRIMARY KEY (word, variant)
)`

const importChunk = 5000

// pgxQuerier is the subset of *pgxpool.Pool used here. pgxmock.PgxPoolIface
// satisfies it in tests.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres is a Source backed by a shared Postgres table.
type Postgres struct {
	db    pgxQuerier
	close func()
}

// OpenPostgres connects to connStr, pings, and ensures the schema.
func OpenPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}

	return &Postgres{db: pool, close: pool.Close}, nil
}

func (p *Postgres) Lookup(ctx context.Context, word string) ([]string, error) {
	query := `
		SELECT array_agg(phones ORDER BY variant)
		FROM pronunciations
		WHERE word = $1
	`

	// array_agg always yields one row; an unknown word scans as NULL, leaving phones nil.
	var phones []string
	if err := p.db.QueryRow(ctx, query, word).Scan(&phones); err != nil {
		return nil, fmt.Errorf("postgres lookup %q: %w", word, err)
	}

	return phones, nil
}

// Import inserts all entries of m in chunks. ON CONFLICT DO NOTHING keeps
// existing rows, so re-running an import is safe. Returns rows inserted.
func (p *Postgres) Import(ctx context.Context, m *Memory) (int64, error) {
	query := `
		INSERT INTO pronunciations (word, variant, phones)
		SELECT * FROM unnest($1::text[], $2::int[], $3::text[])
		ON CONFLICT (word, variant) DO NOTHING
	`

	entries := m.Entries()
	var inserted int64
	for start := 0; start < len(entries); start += importChunk {
		end := min(start+importChunk, len(entries))
		chunk := entries[start:end]

		words := make([]string, len(chunk))
		variants := make([]int32, len(chunk))
		phones := make([]string, len(chunk))
		for i, e := range chunk {
			words[i] = e.Word
			variants[i] = int32(e.Variant)
			phones[i] = e.Phones
		}

		tag, err := p.db.Exec(ctx, query, words, variants, phones)
		if err != nil {
			return inserted, fmt.Errorf("postgres import rows %d-%d: %w", start, end, err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// Count returns the number of distinct words stored.
func (p *Postgres) Count(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.QueryRow(ctx, `SELECT COUNT(DISTINCT word) FROM pronunciations`).Scan(&n)
	return n, err
}

func (p *Postgres) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}
