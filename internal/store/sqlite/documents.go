package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

const documentColumns = `d.id, d.title, d.content, d.category, d.tags, d.created_at, d.updated_at`

func scanDocument(row scanner, extra ...any) (store.Document, error) {
	var (
		d        store.Document
		category sql.NullString
		tags     sql.NullString
	)
	dest := append([]any{&d.ID, &d.Title, &d.Content, &category, &tags, &d.CreatedAt, &d.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return d, err
	}
	if category.Valid {
		d.Category = &category.String
	}
	if tags.Valid {
		d.Tags = &tags.String
	}
	return d, nil
}

func (s *Store) queryDocuments(ctx context.Context, withSnippet bool, query string, args ...any) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []store.Document{}
	for rows.Next() {
		var (
			d       store.Document
			err     error
			snippet sql.NullString
		)
		if withSnippet {
			d, err = scanDocument(rows, &snippet)
			d.ContentSnippet = snippet.String
		} else {
			d, err = scanDocument(rows)
		}
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) SearchDocuments(ctx context.Context, query string, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = store.DefaultDocSearchLimit
	}
	if s.useFTS(query) {
		docs, err := s.queryDocuments(ctx, true, `
			SELECT `+documentColumns+`,
				snippet(documents_fts, 1, '<mark>', '</mark>', '...', 64)
			FROM documents_fts fts
			JOIN documents d ON d.id = fts.rowid
			WHERE documents_fts MATCH ?
			ORDER BY fts.rank
			LIMIT ?`, query, limit)
		switch {
		case err != nil:
			s.logger.Debug("fts query rejected, using LIKE", "query", query, "error", err)
		case len(docs) > 0:
			return docs, nil
		}
	}

	pattern := likePattern(query)
	docs, err := s.queryDocuments(ctx, true, `
		SELECT `+documentColumns+`, substr(d.content, 1, 200) || '...'
		FROM documents d
		WHERE d.title LIKE ? ESCAPE '\' OR d.content LIKE ? ESCAPE '\'
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return docs, nil
}

func (s *Store) ListDocuments(ctx context.Context, limit, offset int) ([]store.Document, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	docs, err := s.queryDocuments(ctx, false, `
		SELECT `+documentColumns+` FROM documents d
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *Store) CreateDocument(ctx context.Context, in store.DocumentInput) (*store.Document, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (title, content, category, tags) VALUES (?, ?, ?, ?)`,
		in.Title, in.Content, store.NullIfEmpty(in.Category), store.NullIfEmpty(in.Tags),
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	d, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents d WHERE d.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return &d, nil
}

func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
