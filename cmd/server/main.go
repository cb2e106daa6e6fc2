package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"trip-route-service/internal/adapters/cache"
	"trip-route-service/internal/adapters/directions"
	"trip-route-service/internal/adapters/distance"
	"trip-route-service/internal/adapters/repositories"
	"trip-route-service/internal/adapters/solve"
	"trip-route-service/internal/api"
	"trip-route-service/internal/config"
	"trip-route-service/internal/platform/db"
	"trip-route-service/internal/ports"
	"trip-route-service/internal/tour"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQLite/Postgres, ORS, the MIP solver, Redis)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	seedPath := config.Get("SEED_PATH", "data/seeds/trip.json")
	flightMinutes := config.GetFloat("FLIGHT_MINUTES", 660)
	timeLimit := config.GetDuration("SOLVE_TIME_LIMIT", 30*time.Second)
	cacheTTL := config.GetDuration("ROUTE_CACHE_TTL", 24*time.Hour)

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	var penalty *float64
	if v := os.Getenv("GATEWAY_PENALTY"); v != "" {
		p := config.GetFloat("GATEWAY_PENALTY", 0)
		penalty = &p
	}

	conn, repo, durationCache, geocodeCache, err := openStorage(seedPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	provider, err := distance.NewORSMatrixProvider(orsKey, durationCache, geocodeCache)
	if err != nil {
		log.Fatal(err)
	}

	directionsProvider, err := directions.NewORSDirectionsProvider(orsKey)
	if err != nil {
		log.Fatal(err)
	}

	var routeCache ports.RouteCache
	if redisURL := os.Getenv("REDIS_URL"); strings.TrimSpace(redisURL) != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("parse REDIS_URL: %v", err)
		}
		routeCache = cache.NewRedisRouteCache(redis.NewClient(opts))
		log.Println("Route caching enabled (redis)")
	}

	var solver tour.Solver = solve.NewMIPTourSolver()
	if config.Get("SOLVER", "mip") == "exhaustive" {
		solver = solve.NewExhaustiveTourSolver()
	}

	router := api.NewRouter(repo, provider, solver, directionsProvider, routeCache, api.RouterConfig{
		FlightMinutes: flightMinutes,
		Penalty:       penalty,
		TimeLimit:     timeLimit,
		CacheTTL:      cacheTTL,
	})

	// Timeouts leave room for a cold-cache solve plus external API latency.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openStorage picks Postgres when DATABASE_URL is set (schema and seed are
// handled by dbtool there), falling back to a local SQLite file that is
// initialized and seeded on startup for local runs.
func openStorage(seedPath string) (*sql.DB, ports.LocationRepository, distance.DurationCache, distance.GeocodeCache, error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		repo := repositories.NewSQLLocationRepository(conn)
		return conn, repo, cache.NewSQLDurationCache(conn), cache.NewSQLGeocodeCache(conn), nil
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	conn, err := openSqlite(dbPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if err := initAndSeed(conn, seedPath); err != nil {
		conn.Close()
		return nil, nil, nil, nil, err
	}

	repo := repositories.NewSqliteLocationRepository(conn)
	return conn, repo, cache.NewSqliteDurationCache(conn), cache.NewSqliteGeocodeCache(conn), nil
}

func openSqlite(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openSqlite: open sqlite database %q: %w", dbPath, err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("openSqlite: verify sqlite connection to %q: %w", dbPath, err)
	}

	return conn, nil
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
