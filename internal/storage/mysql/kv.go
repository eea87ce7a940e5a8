// Package mysql stores snapshots and sessions in a MySQL table.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/storage"
	"github.com/Rrens/meeting-buddy/internal/storage/sqlstore"
)

var dialect = sqlstore.Dialect{
	Name: "mysql",
	Schema: `CREATE TABLE IF NOT EXISTS kv_store (
		kv_key     VARCHAR(255) NOT NULL PRIMARY KEY,
		kv_value   LONGTEXT NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`,
	Upsert: `INSERT INTO kv_store (kv_key, kv_value, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE kv_value = VALUES(kv_value), updated_at = VALUES(updated_at)`,
}

// Open is the storage.Factory for the mysql backend
func Open(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	db, err := sql.Open("mysql", cfg.MySQL.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	kv, err := sqlstore.New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return kv, nil
}
