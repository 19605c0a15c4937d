package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"visa-tracker/internal/common/database"
)

const (
	pgCreateTable = `CREATE TABLE IF NOT EXISTS tracker_kv (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	pgSelect = `SELECT value FROM tracker_kv WHERE key = $1`
	pgUpsert = `INSERT INTO tracker_kv (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
)

// Postgres stores every key as one row of tracker_kv.
type Postgres struct {
	client *database.PostgresClient
}

func NewPostgres(client *database.PostgresClient) *Postgres {
	return &Postgres{client: client}
}

func (p *Postgres) Name() string { return "postgres" }

// EnsureSchema creates tracker_kv when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.client.Exec(ctx, pgCreateTable); err != nil {
		return fmt.Errorf("create tracker_kv: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.client.QueryRow(ctx, pgSelect, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.client.Exec(ctx, pgUpsert, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.client.Ping(ctx) }
func (p *Postgres) Close() error                   { return p.client.Close() }
