package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

const faqColumns = `id, question, answer, category, tags, created_at, updated_at, view_count, helpful_count`

func scanFAQ(row pgx.Row, extra ...any) (store.FAQ, error) {
	var f store.FAQ
	dest := append([]any{
		&f.ID, &f.Question, &f.Answer, &f.Category, &f.Tags,
		&f.CreatedAt, &f.UpdatedAt, &f.ViewCount, &f.HelpfulCount,
	}, extra...)
	err := row.Scan(dest...)
	return f, err
}

func collectFAQs(rows pgx.Rows, withRank bool) ([]store.FAQ, error) {
	defer rows.Close()
	faqs := []store.FAQ{}
	for rows.Next() {
		var (
			f    store.FAQ
			err  error
			rank float32
		)
		if withRank {
			f, err = scanFAQ(rows, &rank)
			f.Rank = float64(rank)
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
	q := `SELECT ` + faqColumns + ` FROM faqs`
	args := []any{}
	if opts.Category != "" {
		q += ` WHERE category = $1`
		args = append(args, opts.Category)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return collectFAQs(rows, false)
}

func (s *Store) SearchFAQs(ctx context.Context, query string, limit int) ([]store.FAQ, error) {
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+faqColumns+`, ts_rank(search, q) AS rank
		FROM faqs, websearch_to_tsquery('simple', $1) q
		WHERE search @@ q OR question ILIKE $2 OR answer ILIKE $2
		ORDER BY rank DESC, created_at DESC
		LIMIT $3`,
		query, likePattern(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search faqs: %w", err)
	}
	return collectFAQs(rows, true)
}

func (s *Store) GetFAQ(ctx context.Context, id int64) (*store.FAQ, error) {
	f, err := scanFAQ(s.pool.QueryRow(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) CreateFAQ(ctx context.Context, in store.FAQInput) (*store.FAQ, error) {
	f, err := scanFAQ(s.pool.QueryRow(ctx, `
		INSERT INTO faqs (question, answer, category, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING `+faqColumns,
		in.Question, in.Answer, store.NullIfEmpty(in.Category), string(in.Tags),
	))
	if err != nil {
		return nil, fmt.Errorf("insert faq: %w", err)
	}
	return &f, nil
}

func (s *Store) UpdateFAQ(ctx context.Context, id int64, in store.FAQInput) (*store.FAQ, error) {
	f, err := scanFAQ(s.pool.QueryRow(ctx, `
		UPDATE faqs SET question = $1, answer = $2, category = $3, tags = $4, updated_at = now()
		WHERE id = $5
		RETURNING `+faqColumns,
		in.Question, in.Answer, store.NullIfEmpty(in.Category), string(in.Tags), id,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) DeleteFAQ(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementViews(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `UPDATE faqs SET view_count = view_count + 1 WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func (s *Store) MarkHelpful(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE faqs SET helpful_count = helpful_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark helpful: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) BulkCreateFAQs(ctx context.Context, in []store.FAQInput) ([]store.BulkResult, error) {
	results := make([]store.BulkResult, len(in))
	for i, item := range in {
		if err := ctx.Err(); err != nil {
			return results[:i], err
		}
		f, err := s.CreateFAQ(ctx, item)
		if err != nil {
			results[i] = store.BulkResult{Index: i, Error: err.Error()}
			continue
		}
		results[i] = store.BulkResult{Index: i, Success: true, ID: f.ID, Question: f.Question, Answer: f.Answer}
	}
	return results, nil
}

func (s *Store) ExistingQuestions(ctx context.Context, questions []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(questions) == 0 {
		return existing, nil
	}
	normalized := make([]string, len(questions))
	for i, q := range questions {
		normalized[i] = store.NormalizeQuestion(q)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT question FROM faqs
		WHERE btrim(regexp_replace(question, '\s+', ' ', 'g')) = ANY($1)`, normalized)
	if err != nil {
		return nil, fmt.Errorf("query existing questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		existing[store.NormalizeQuestion(q)] = true
	}
	return existing, rows.Err()
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT category FROM faqs
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}
