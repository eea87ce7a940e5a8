// Package sqlite stores snapshots and sessions in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/storage"
	"github.com/Rrens/meeting-buddy/internal/storage/sqlstore"
)

var dialect = sqlstore.Dialect{
	Name: "sqlite",
	Schema: `CREATE TABLE IF NOT EXISTS kv_store (
		kv_key     TEXT PRIMARY KEY,
		kv_value   TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	Upsert: `INSERT INTO kv_store (kv_key, kv_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated_at = excluded.updated_at`,
}

// New opens the database file at path. ":memory:" opens a private
// in-memory database.
func New(ctx context.Context, path string) (*sqlstore.KV, error) {
	if path == "" {
		return nil, fmt.Errorf("database file path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	if path == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	kv, err := sqlstore.New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return kv, nil
}

// Open is the storage.Factory for the sqlite backend
func Open(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	return New(ctx, cfg.SQLite.Path)
}
