// Package sqlstore implements a storage backend over database/sql, shared by
// the sqlite and mysql drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dialect holds the driver-specific statements
type Dialect struct {
	Name   string
	Schema string
	Upsert string
}

// KV implements storage.Backend over a kv_store table
type KV struct {
	db      *sql.DB
	dialect Dialect
}

// New creates the table if needed and returns a KV over db
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*KV, error) {
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return nil, fmt.Errorf("failed to create kv_store: %w", err)
	}
	return &KV{db: db, dialect: dialect}, nil
}

func (k *KV) Name() string { return k.dialect.Name }

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := k.db.QueryRowContext(ctx, `SELECT kv_value FROM kv_store WHERE kv_key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	if _, err := k.db.ExecContext(ctx, k.dialect.Upsert, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Remove(ctx context.Context, key string) error {
	if _, err := k.db.ExecContext(ctx, `DELETE FROM kv_store WHERE kv_key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (k *KV) HealthCheck(ctx context.Context) error {
	return k.db.PingContext(ctx)
}

func (k *KV) Close() error {
	return k.db.Close()
}
