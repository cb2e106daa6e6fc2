package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		location_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		lon REAL NOT NULL DEFAULT 0,
		lat REAL NOT NULL DEFAULT 0,
		cluster TEXT NOT NULL,
		gateway INTEGER NOT NULL DEFAULT 0
	);
	`

	createDurationCacheQuery := `
	CREATE TABLE IF NOT EXISTS duration_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        duration_minutes REAL NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_duration_cache_destination_origin
    ON duration_cache(destination, origin);
	`

	statements := []string{
		createLocationsQuery,
		createDurationCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type LocationSeed struct {
	LocationID int     `json:"location_id"`
	Name       string  `json:"name"`
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	Cluster    string  `json:"cluster"`
	Gateway    bool    `json:"gateway"`
}

// Populate the database with location data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
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
	defer tx.Rollback()

	query := `
	INSERT OR REPLACE INTO locations (
		location_id,
		name,
		lon,
		lat,
		cluster,
		gateway
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range rows {
		gw := 0
		if l.Gateway {
			gw = 1
		}
		if _, err := stmt.Exec(l.LocationID, l.Name, l.Lon, l.Lat, l.Cluster, gw); err != nil {
			return fmt.Errorf("seed locations: insert location_id=%d: %w", l.LocationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return nil
}

// validateSeeds checks that the seed data can form a routable trip: two
// clusters, one gateway per cluster, no blank names.
func validateSeeds(data []LocationSeed) ([]LocationSeed, error) {
	clusters := map[string]struct{}{}
	gateways := map[string]int{}
	rows := make([]LocationSeed, 0, len(data))
	for i, item := range data {
		locationID := item.LocationID
		if locationID <= 0 {
			return nil, fmt.Errorf("seed locations: invalid locationID at index %d: %d", i+1, locationID)
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("seed locations: item at index %d: name cannot be empty", i+1)
		}

		cluster := strings.TrimSpace(item.Cluster)
		if cluster == "" {
			return nil, fmt.Errorf("seed locations: item at index %d: cluster cannot be empty", i+1)
		}
		clusters[cluster] = struct{}{}
		if item.Gateway {
			gateways[cluster]++
		}

		item.Name = name
		item.Cluster = cluster
		rows = append(rows, item)
	}

	if len(clusters) != 2 {
		return nil, fmt.Errorf("seed locations: expected exactly 2 clusters, got %d", len(clusters))
	}
	for cluster, n := range gateways {
		if n != 1 {
			return nil, fmt.Errorf("seed locations: cluster %q must have exactly 1 gateway, got %d", cluster, n)
		}
	}
	if len(gateways) != 2 {
		return nil, fmt.Errorf("seed locations: each cluster needs a gateway, found %d", len(gateways))
	}

	return rows, nil
}
