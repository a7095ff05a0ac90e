// Package postgres implements store.Store on PostgreSQL. Full-text search
// uses generated tsvector columns with the 'simple' configuration, combined
// with substring matching so unsegmented (e.g. Japanese) text is still found.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS faqs (
		id BIGSERIAL PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		category TEXT,
		tags TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		view_count INTEGER NOT NULL DEFAULT 0,
		helpful_count INTEGER NOT NULL DEFAULT 0,
		search tsvector GENERATED ALWAYS AS (
			to_tsvector('simple', question || ' ' || answer || ' ' || coalesce(category, '') || ' ' || tags)
		) STORED
	)`,
	`CREATE INDEX IF NOT EXISTS idx_faqs_search ON faqs USING GIN (search)`,
	`CREATE INDEX IF NOT EXISTS idx_faqs_category ON faqs (category)`,
	`CREATE INDEX IF NOT EXISTS idx_faqs_created_at ON faqs (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS search_logs (
		id BIGSERIAL PRIMARY KEY,
		query TEXT NOT NULL,
		found BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS admin_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		password_hash TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT,
		tags TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		search tsvector GENERATED ALWAYS AS (
			to_tsvector('simple', title || ' ' || content || ' ' || coalesce(category, '') || ' ' || coalesce(tags, ''))
		) STORED
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_search ON documents USING GIN (search)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// likePattern wraps q for a substring ILIKE match, escaping wildcards.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
