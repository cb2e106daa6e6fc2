package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trip-route-service/internal/platform/obs"
)

// SQLDurationCache is a Postgres-backed cache for origin->destination
// driving durations in minutes. Used when the service runs against a shared
// database instead of a local SQLite file.
type SQLDurationCache struct {
	DB *sql.DB
}

func NewSQLDurationCache(db *sql.DB) *SQLDurationCache {
	return &SQLDurationCache{DB: db}
}

// Fetch cached durations for one origin and multiple destinations.
func (s *SQLDurationCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, "duration.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("duration cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get duration cache: origin must not be empty")
	}

	if len(destinations) == 0 {
		return map[string]float64{}, nil
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(destinations))
	for _, d := range destinations {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}

	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	q := `
	SELECT destination, duration_minutes
    FROM duration_cache
    WHERE origin = $1
        AND destination = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, origin, uniq)
	if err != nil {
		return nil, fmt.Errorf("get duration cache: query duration_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(uniq))
	for rows.Next() {
		var dest string
		var minutes float64
		if err := rows.Scan(&dest, &minutes); err != nil {
			return nil, fmt.Errorf("get duration cache: scan rows: %w", err)
		}
		out[dest] = minutes
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get duration cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached durations for a single origin.
func (s *SQLDurationCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]float64,
) error {
	if s.DB == nil {
		return errors.New("duration cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert duration cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert duration cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO duration_cache (origin, destination, duration_minutes)
    VALUES ($1, $2, $3)
	ON CONFLICT (origin, destination) DO UPDATE
	    SET duration_minutes = EXCLUDED.duration_minutes;
	`)
	if err != nil {
		return fmt.Errorf("insert duration cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, minutes := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert duration cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, minutes); err != nil {
			return fmt.Errorf("insert duration cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert duration cache commit: %w", err)
	}

	return nil
}
