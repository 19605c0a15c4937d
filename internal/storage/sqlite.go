package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"visa-tracker/internal/common/database"
)

// SQLite stores every key as one row of the kv table.
type SQLite struct {
	client *database.SQLiteClient
}

// NewSQLite creates the kv table if needed. The client is closed on failure.
func NewSQLite(ctx context.Context, client *database.SQLiteClient) (*SQLite, error) {
	if _, err := client.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLite{client: client}, nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.client.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.DB.ExecContext(ctx,
		`INSERT INTO kv(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error { return s.client.Ping(ctx) }
func (s *SQLite) Close() error                   { return s.client.Close() }
