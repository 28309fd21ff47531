package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS persona_reports (
	id             UUID PRIMARY KEY,
	username       TEXT NOT NULL,
	account_created TIMESTAMPTZ,
	link_karma     INTEGER NOT NULL DEFAULT 0,
	comment_karma  INTEGER NOT NULL DEFAULT 0,
	post_count     INTEGER NOT NULL DEFAULT 0,
	comment_count  INTEGER NOT NULL DEFAULT 0,
	backend        TEXT NOT NULL,
	persona        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS persona_reports_username_idx ON persona_reports (lower(username), created_at DESC);
`

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the tables the store needs.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}
