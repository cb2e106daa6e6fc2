package api

import (
	"net/http"
	"time"

	"trip-route-service/internal/api/handlers"
	"trip-route-service/internal/ports"
	"trip-route-service/internal/tour"
)

// RouterConfig groups the tunables the handlers need beyond their ports.
type RouterConfig struct {
	FlightMinutes float64
	Penalty       *float64
	TimeLimit     time.Duration
	CacheTTL      time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	repo ports.LocationRepository,
	provider ports.CostMatrixProvider,
	solver tour.Solver,
	directions ports.DirectionsProvider,
	routeCache ports.RouteCache,
	cfg RouterConfig,
) http.Handler {
	mux := http.NewServeMux()

	tripHandler := &handlers.TripHandler{
		Repo:          repo,
		Provider:      provider,
		Solver:        solver,
		Directions:    directions,
		Cache:         routeCache,
		FlightMinutes: cfg.FlightMinutes,
		Penalty:       cfg.Penalty,
		TimeLimit:     cfg.TimeLimit,
		CacheTTL:      cfg.CacheTTL,
	}
	routeHandler := &handlers.RouteHandler{
		Solver:       solver,
		MaxTimeLimit: cfg.TimeLimit,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/trip", tripHandler.Trip)
	mux.HandleFunc("/routes", routeHandler.Solve)

	return loggingMiddleware(mux)
}
