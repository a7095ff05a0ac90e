package postgres

import (
	"context"
	"fmt"
)

func (s *Store) AdminPasswordHash(ctx context.Context) (string, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT password_hash FROM admin_settings WHERE id = 1`).Scan(&hash)
	if err != nil {
		return "", notFound(err)
	}
	return hash, nil
}

func (s *Store) SetAdminPasswordHash(ctx context.Context, hash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admin_settings (id, password_hash, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET password_hash = $1, updated_at = now()`,
		hash,
	)
	if err != nil {
		return fmt.Errorf("upsert admin password: %w", err)
	}
	return nil
}
