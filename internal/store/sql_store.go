package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore implements KeyValueStore over the cart_state table.
// The same queries run on SQLite and Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM cart_state WHERE cart_key = $1`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to query cart state: %w", err)
	}

	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO cart_state (cart_key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert cart state: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
