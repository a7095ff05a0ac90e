package sqlite

import (
	"context"
	"fmt"
)

func (s *Store) AdminPasswordHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM admin_settings WHERE id = 1`).Scan(&hash)
	if err != nil {
		return "", notFound(err)
	}
	return hash, nil
}

func (s *Store) SetAdminPasswordHash(ctx context.Context, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_settings (id, password_hash, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET password_hash = excluded.password_hash, updated_at = excluded.updated_at`,
		hash,
	)
	if err != nil {
		return fmt.Errorf("upsert admin password: %w", err)
	}
	return nil
}
