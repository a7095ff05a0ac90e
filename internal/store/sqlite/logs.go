package sqlite

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

func (s *Store) LogSearch(ctx context.Context, query string, found bool) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO search_logs (query, found) VALUES (?, ?)`, query, found)
	if err != nil {
		return fmt.Errorf("insert search log: %w", err)
	}
	return nil
}

func (s *Store) SearchLogs(ctx context.Context, limit int) ([]store.SearchLog, error) {
	if limit <= 0 {
		limit = store.DefaultLogLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, found, created_at FROM search_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list search logs: %w", err)
	}
	defer rows.Close()

	logs := []store.SearchLog{}
	for rows.Next() {
		var l store.SearchLog
		if err := rows.Scan(&l.ID, &l.Query, &l.Found, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	var st store.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM faqs),
			(SELECT count(*) FROM search_logs),
			(SELECT count(*) FROM search_logs WHERE found = 1)`,
	).Scan(&st.TotalFAQs, &st.TotalSearches, &st.FoundSearches)
	if err != nil {
		return store.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	st.SuccessRate = store.SuccessRate(st.FoundSearches, st.TotalSearches)
	return st, nil
}
