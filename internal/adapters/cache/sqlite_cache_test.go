package cache

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"trip-route-service/internal/domain"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema := []string{
		`CREATE TABLE duration_cache (
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			duration_minutes REAL NOT NULL,
			PRIMARY KEY (origin, destination)
		);`,
		`CREATE TABLE geocode_cache (
			address TEXT PRIMARY KEY,
			lon REAL NOT NULL,
			lat REAL NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func TestSqliteDurationCacheRoundTrip(t *testing.T) {
	c := NewSqliteDurationCache(openTestDB(t))
	ctx := context.Background()

	put := map[string]float64{"B": 12.5, "C": 30}
	if err := c.PutMany(ctx, "A", put); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, "A", []string{"B", "C", "D"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got["B"] != 12.5 || got["C"] != 30 {
		t.Fatalf("got %v", got)
	}
	if _, ok := got["D"]; ok {
		t.Fatal("uncached destination must be absent, not zero")
	}
}

func TestSqliteDurationCacheOverwrites(t *testing.T) {
	c := NewSqliteDurationCache(openTestDB(t))
	ctx := context.Background()

	if err := c.PutMany(ctx, "A", map[string]float64{"B": 10}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.PutMany(ctx, "A", map[string]float64{"B": 20}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := c.GetMany(ctx, "A", []string{"B"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["B"] != 20 {
		t.Fatalf("got %v, want the newer value 20", got["B"])
	}
}

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	c := NewSqliteGeocodeCache(openTestDB(t))
	ctx := context.Background()

	put := map[string]domain.Coordinates{
		"Pier 39": {Lon: -122.41, Lat: 37.8},
	}
	if err := c.PutMany(ctx, put); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"Pier 39", "Unknown"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got["Pier 39"] != (domain.Coordinates{Lon: -122.41, Lat: 37.8}) {
		t.Fatalf("got %v", got["Pier 39"])
	}
}

func TestSqliteCachesIgnoreBlankKeys(t *testing.T) {
	c := NewSqliteDurationCache(openTestDB(t))
	ctx := context.Background()

	got, err := c.GetMany(ctx, "A", []string{"", "  "})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want no entries for blank destinations", got)
	}
}
