package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"trip-route-service/internal/domain"
)

// Postgres-backed implementation of the LocationRepository port.
type SQLLocationRepository struct{ DB *sql.DB }

func NewSQLLocationRepository(db *sql.DB) *SQLLocationRepository {
	return &SQLLocationRepository{DB: db}
}

func (s *SQLLocationRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("sql location repository: DB is nil")
	}

	query := `
	SELECT
		location_id,
		name,
		lon,
		lat,
		cluster,
		gateway
	FROM locations
	ORDER BY location_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	locations := make([]domain.Location, 0, 16)
	for rows.Next() {
		var loc domain.Location
		err := rows.Scan(&loc.ID, &loc.Name, &loc.Coords.Lon, &loc.Coords.Lat, &loc.Cluster, &loc.Gateway)
		if err != nil {
			return nil, fmt.Errorf("list locations: scan row: %w", err)
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	return locations, nil
}

// InitPostgresSchema creates the locations table. Safe to run repeatedly.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	query := `
	CREATE TABLE IF NOT EXISTS locations (
		location_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		lon DOUBLE PRECISION NOT NULL DEFAULT 0,
		lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		cluster TEXT NOT NULL,
		gateway BOOLEAN NOT NULL DEFAULT FALSE
	);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("init postgres schema: create locations table: %w", err)
	}

	return nil
}

// SeedPostgresFromJSON populates the locations table from a JSON file.
func SeedPostgresFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed locations: read %q: %w", jsonPath, err)
	}

	var data []LocationSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed locations: parse json: %w", err)
	}

	rows, err := validateSeeds(data)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO locations (
		location_id,
		name,
		lon,
		lat,
		cluster,
		gateway
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (location_id) DO UPDATE
		SET name = EXCLUDED.name,
		    lon = EXCLUDED.lon,
		    lat = EXCLUDED.lat,
		    cluster = EXCLUDED.cluster,
		    gateway = EXCLUDED.gateway;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range rows {
		if _, err := stmt.Exec(l.LocationID, l.Name, l.Lon, l.Lat, l.Cluster, l.Gateway); err != nil {
			return fmt.Errorf("seed locations: insert location_id=%d: %w", l.LocationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return nil
}
