package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitPostgresSchema creates the shared cache tables used by the Postgres
// variants. Safe to run repeatedly.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS duration_cache (
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			duration_minutes DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (origin, destination)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			address TEXT PRIMARY KEY,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_duration_cache_destination_origin
		ON duration_cache(destination, origin);
		`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}
