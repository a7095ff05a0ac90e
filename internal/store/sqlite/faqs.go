package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

const faqColumns = `f.id, f.question, f.answer, f.category, coalesce(f.tags, ''),
	f.created_at, f.updated_at, coalesce(f.view_count, 0), coalesce(f.helpful_count, 0)`

type scanner interface {
	Scan(dest ...any) error
}

func scanFAQ(row scanner, extra ...any) (store.FAQ, error) {
	var (
		f        store.FAQ
		category sql.NullString
	)
	dest := append([]any{
		&f.ID, &f.Question, &f.Answer, &category, &f.Tags,
		&f.CreatedAt, &f.UpdatedAt, &f.ViewCount, &f.HelpfulCount,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return f, err
	}
	if category.Valid {
		f.Category = &category.String
	}
	return f, nil
}

func (s *Store) queryFAQs(ctx context.Context, withRank bool, query string, args ...any) ([]store.FAQ, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	faqs := []store.FAQ{}
	for rows.Next() {
		var (
			f    store.FAQ
			err  error
			rank float64
		)
		if withRank {
			f, err = scanFAQ(rows, &rank)
			f.Rank = rank
		} else {
			f, err = scanFAQ(rows)
		}
		if err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		faqs = append(faqs, f)
	}
	return faqs, rows.Err()
}

func (s *Store) ListFAQs(ctx context.Context, opts store.ListOptions) ([]store.FAQ, error) {
	if opts.Limit <= 0 {
		opts.Limit = store.DefaultListLimit
	}
	q := `SELECT ` + faqColumns + ` FROM faqs f`
	var args []any
	if opts.Category != "" {
		q += ` WHERE f.category = ?`
		args = append(args, opts.Category)
	}
	q += ` ORDER BY f.created_at DESC, f.id DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	faqs, err := s.queryFAQs(ctx, false, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return faqs, nil
}

func (s *Store) SearchFAQs(ctx context.Context, query string, limit int) ([]store.FAQ, error) {
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	if s.useFTS(query) {
		faqs, err := s.queryFAQs(ctx, true, `
			SELECT `+faqColumns+`, fts.rank
			FROM faqs_fts fts
			JOIN faqs f ON f.id = fts.rowid
			WHERE faqs_fts MATCH ?
			ORDER BY fts.rank
			LIMIT ?`, query, limit)
		switch {
		case err != nil:
			s.logger.Debug("fts query rejected, using LIKE", "query", query, "error", err)
		case len(faqs) > 0:
			return faqs, nil
		}
	}

	pattern := likePattern(query)
	faqs, err := s.queryFAQs(ctx, false, `
		SELECT `+faqColumns+` FROM faqs f
		WHERE f.question LIKE ? ESCAPE '\' OR f.answer LIKE ? ESCAPE '\'
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search faqs: %w", err)
	}
	return faqs, nil
}

func (s *Store) GetFAQ(ctx context.Context, id int64) (*store.FAQ, error) {
	f, err := scanFAQ(s.db.QueryRowContext(ctx, `SELECT `+faqColumns+` FROM faqs f WHERE f.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) CreateFAQ(ctx context.Context, in store.FAQInput) (*store.FAQ, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO faqs (question, answer, category, tags) VALUES (?, ?, ?, ?)`,
		in.Question, in.Answer, store.NullIfEmpty(in.Category), string(in.Tags),
	)
	if err != nil {
		return nil, fmt.Errorf("insert faq: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetFAQ(ctx, id)
}

func (s *Store) UpdateFAQ(ctx context.Context, id int64, in store.FAQInput) (*store.FAQ, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE faqs SET question = ?, answer = ?, category = ?, tags = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		in.Question, in.Answer, store.NullIfEmpty(in.Category), string(in.Tags), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update faq: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetFAQ(ctx, id)
}

func (s *Store) DeleteFAQ(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM faqs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementViews(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE faqs SET view_count = coalesce(view_count, 0) + 1 WHERE id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func (s *Store) MarkHelpful(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE faqs SET helpful_count = coalesce(helpful_count, 0) + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark helpful: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) BulkCreateFAQs(ctx context.Context, in []store.FAQInput) ([]store.BulkResult, error) {
	stmt, err := s.db.PrepareContext(ctx,
		`INSERT INTO faqs (question, answer, category, tags) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	results := make([]store.BulkResult, len(in))
	for i, item := range in {
		if err := ctx.Err(); err != nil {
			return results[:i], err
		}
		res, err := stmt.ExecContext(ctx, item.Question, item.Answer, store.NullIfEmpty(item.Category), string(item.Tags))
		if err != nil {
			results[i] = store.BulkResult{Index: i, Error: err.Error()}
			continue
		}
		id, _ := res.LastInsertId()
		results[i] = store.BulkResult{Index: i, Success: true, ID: id, Question: item.Question, Answer: item.Answer}
	}
	return results, nil
}

// maxVariables keeps IN lists under SQLite's bound-parameter limit.
const maxVariables = 500

func (s *Store) ExistingQuestions(ctx context.Context, questions []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for start := 0; start < len(questions); start += maxVariables {
		end := min(start+maxVariables, len(questions))
		batch := questions[start:end]
		args := make([]any, len(batch))
		for i, q := range batch {
			args[i] = store.NormalizeQuestion(q)
		}
		rows, err := s.db.QueryContext(ctx,
			`SELECT question FROM faqs WHERE normalize_question(question) IN (`+placeholders(len(batch))+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("query existing questions: %w", err)
		}
		for rows.Next() {
			var q string
			if err := rows.Scan(&q); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan question: %w", err)
			}
			existing[store.NormalizeQuestion(q)] = true
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return existing, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM faqs
		WHERE category IS NOT NULL AND category != ''
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
