package substrate

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS document_stores (
    name TEXT PRIMARY KEY,
    state BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Postgres persists the store state as one row per store name.
type Postgres struct {
	db   *sql.DB
	name string
}

// OpenPostgres connects to dsn, bootstraps the schema and returns a substrate
// for the named store.
func OpenPostgres(dsn, name string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{db: db, name: name}, nil
}

// NewPostgres wraps an existing database handle. The caller owns the handle
// and the schema.
func NewPostgres(db *sql.DB, name string) *Postgres {
	return &Postgres{db: db, name: name}
}

// Load implements Substrate.
func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var state []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT state FROM document_stores WHERE name = $1`, p.name,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return state, nil
}

// Save implements Substrate.
func (p *Postgres) Save(ctx context.Context, data []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO document_stores (name, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET state = EXCLUDED.state, updated_at = now()
	`, p.name, data)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (p *Postgres) Close() error { return p.db.Close() }
