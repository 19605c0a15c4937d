// Package storage provides the durable key/value slots the tracker persists into:
// the record list and the dark-mode preference.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visa-tracker/internal/common/config"
	"visa-tracker/internal/common/database"
	"visa-tracker/internal/common/logger"
)

// Well-known keys.
const (
	KeyApplications = "visaApplications"
	KeyDarkMode     = "darkMode"
)

var ErrClosed = errors.New("STORAGE_CLOSED")

// KV is a string-keyed byte store. Get reports found=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Backend is a KV with a lifecycle.
type Backend interface {
	KV
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend named by cfg.Driver and prepares its schema.
func Open(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (Backend, error) {
	var (
		b   Backend
		err error
	)

	switch cfg.Driver {
	case config.DriverMemory:
		b = NewMemory()
	case config.DriverFile:
		b, err = NewFile(cfg.File.Dir)
	case config.DriverSQLite:
		var client *database.SQLiteClient
		if client, err = database.NewSQLite(cfg.SQLite.Path); err == nil {
			b, err = NewSQLite(ctx, client)
		}
	case config.DriverRedis:
		b = NewRedis(database.NewRedis(cfg.Redis), cfg.KeyPrefix)
	case config.DriverPostgres:
		var client *database.PostgresClient
		if client, err = database.NewPostgres(cfg.Postgres); err == nil {
			pg := NewPostgres(client)
			if err = pg.EnsureSchema(ctx); err != nil {
				_ = client.Close()
			}
			b = pg
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Driver, err)
	}

	log.Info("storage backend ready", map[string]interface{}{
		"driver": b.Name(),
	})

	if cfg.Timeout > 0 {
		return WithTimeout(b, config.GetDuration(cfg.Timeout)), nil
	}
	return b, nil
}

type timeoutBackend struct {
	Backend
	timeout time.Duration
}

// WithTimeout bounds every Get and Set by d unless the caller's context is already tighter.
func WithTimeout(b Backend, d time.Duration) Backend {
	return &timeoutBackend{Backend: b, timeout: d}
}

func (t *timeoutBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Backend.Get(ctx, key)
}

func (t *timeoutBackend) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Backend.Set(ctx, key, value)
}
