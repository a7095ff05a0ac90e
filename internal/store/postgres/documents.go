package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

const documentColumns = `id, title, content, category, tags, created_at, updated_at`

func scanDocument(row pgx.Row, extra ...any) (store.Document, error) {
	var d store.Document
	dest := append([]any{
		&d.ID, &d.Title, &d.Content, &d.Category, &d.Tags, &d.CreatedAt, &d.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return d, err
}

func (s *Store) SearchDocuments(ctx context.Context, query string, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = store.DefaultDocSearchLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+documentColumns+`,
			CASE WHEN search @@ q
				THEN ts_headline('simple', content, q, 'StartSel=<mark>, StopSel=</mark>, MaxFragments=1, MaxWords=64, MinWords=16, FragmentDelimiter=...')
				ELSE left(content, 200) || '...'
			END AS content_snippet
		FROM documents, websearch_to_tsquery('simple', $1) q
		WHERE search @@ q OR title ILIKE $2 OR content ILIKE $2
		ORDER BY ts_rank(search, q) DESC, created_at DESC
		LIMIT $3`,
		query, likePattern(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	docs := []store.Document{}
	for rows.Next() {
		var snippet string
		d, err := scanDocument(rows, &snippet)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.ContentSnippet = snippet
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) ListDocuments(ctx context.Context, limit, offset int) ([]store.Document, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []store.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) CreateDocument(ctx context.Context, in store.DocumentInput) (*store.Document, error) {
	d, err := scanDocument(s.pool.QueryRow(ctx, `
		INSERT INTO documents (title, content, category, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING `+documentColumns,
		in.Title, in.Content, store.NullIfEmpty(in.Category), store.NullIfEmpty(in.Tags),
	))
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return &d, nil
}

func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
