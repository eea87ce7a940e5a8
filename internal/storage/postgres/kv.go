package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

// KV implements storage.Backend over the kv_store table
type KV struct {
	db *DB
}

// NewKV creates a new KV on an open pool
func NewKV(db *DB) *KV {
	return &KV{db: db}
}

// Open is the storage.Factory for the postgres backend. It migrates the
// schema before returning.
func Open(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	if err := RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsURL); err != nil {
		return nil, err
	}

	db, err := NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return NewKV(db), nil
}

func (k *KV) Name() string { return "postgres" }

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`

	var value string
	err := k.db.Pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := k.db.Pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Remove(ctx context.Context, key string) error {
	if _, err := k.db.Pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (k *KV) HealthCheck(ctx context.Context) error {
	return k.db.Ping(ctx)
}

func (k *KV) Close() error {
	k.db.Close()
	return nil
}
