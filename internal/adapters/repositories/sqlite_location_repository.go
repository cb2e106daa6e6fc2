package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trip-route-service/internal/domain"
)

// SQLite-backed implementation of the LocationRepository port.
type SqliteLocationRepository struct{ DB *sql.DB }

func NewSqliteLocationRepository(db *sql.DB) *SqliteLocationRepository {
	return &SqliteLocationRepository{DB: db}
}

// Return all locations stored in the database, ordered by id so that row
// position matches cost-matrix index.
func (s *SqliteLocationRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite location repository: DB is nil")
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
		var gateway int
		err := rows.Scan(&loc.ID, &loc.Name, &loc.Coords.Lon, &loc.Coords.Lat, &loc.Cluster, &gateway)
		if err != nil {
			return nil, fmt.Errorf("list locations: scan row: %w", err)
		}
		loc.Gateway = gateway != 0
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	return locations, nil
}
