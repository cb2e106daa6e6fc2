package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"trip-route-service/internal/api/dto"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/tour"
)

// RouteHandler solves ad-hoc routing requests with a caller-supplied cost
// matrix, bypassing the repository and mapping service entirely.
type RouteHandler struct {
	Solver tour.Solver

	MaxTimeLimit time.Duration
}

func (h *RouteHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.RouteRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	matrix, err := matrixFromRequest(&req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	limit := time.Duration(req.TimeLimitSeconds) * time.Second
	if limit < 0 {
		writeError(w, r, http.StatusBadRequest, "time_limit_seconds must not be negative")
		return
	}
	if h.MaxTimeLimit > 0 && limit > h.MaxTimeLimit {
		limit = h.MaxTimeLimit
	}

	if req.GatewayPenalty != nil && *req.GatewayPenalty < 0 {
		writeError(w, r, http.StatusBadRequest, "gateway_penalty must not be negative")
		return
	}

	sol, err := tour.Solve(r.Context(), matrix, tour.Options{Penalty: req.GatewayPenalty, TimeLimit: limit}, h.Solver)
	if err != nil {
		writeSolveError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, renderRoute(matrix, sol))
}

// matrixFromRequest assembles a CostMatrix from the request body. The
// gateway pair is derived from the per-location gateway flags; full
// validation happens inside the solve.
func matrixFromRequest(req *dto.RouteRequest) (*domain.CostMatrix, error) {
	if len(req.Locations) < 2 {
		return nil, errors.New("at least 2 locations are required")
	}

	locations := make([]domain.Location, 0, len(req.Locations))
	gateway := domain.GatewayPair{A: -1, B: -1}
	for i, l := range req.Locations {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			return nil, errors.New("every location needs a name")
		}

		if l.Gateway {
			switch {
			case gateway.A < 0:
				gateway.A = i
			case gateway.B < 0:
				gateway.B = i
			default:
				return nil, errors.New("more than 2 locations flagged as gateway")
			}
		}

		locations = append(locations, domain.Location{
			ID:      i,
			Name:    name,
			Coords:  domain.Coordinates{Lon: l.Lng, Lat: l.Lat},
			Cluster: strings.TrimSpace(l.Cluster),
			Gateway: l.Gateway,
		})
	}

	if gateway.B < 0 {
		return nil, errors.New("exactly 2 locations must be flagged as gateway")
	}

	return &domain.CostMatrix{
		Locations: locations,
		Costs:     req.CostsMinutes,
		Gateway:   gateway,
	}, nil
}

func renderRoute(m *domain.CostMatrix, sol *domain.RouteSolution) *dto.RouteResponse {
	points := make([]dto.RoutePointResponse, 0, len(m.Locations))
	for _, loc := range m.Locations {
		points = append(points, dto.RoutePointResponse{
			Lat:  loc.Coords.Lat,
			Lng:  loc.Coords.Lon,
			Name: loc.Name,
		})
	}

	names := make([]string, 0, len(sol.Order))
	for _, idx := range sol.Order {
		names = append(names, m.Locations[idx].Name)
	}

	return &dto.RouteResponse{
		Locations:              points,
		RouteIndices:           sol.Order,
		RouteNames:             names,
		GatewayIndices:         [2]int{sol.Gateway.A, sol.Gateway.B},
		TotalTravelTimeMinutes: sol.TotalCost,
		FlightTimeTotalMinutes: sol.GatewayCost,
		LocalTravelTimeMinutes: sol.LocalCost,
		VerifiedOptimal:        sol.Optimal,
	}
}

// writeSolveError maps optimization failures onto HTTP statuses. A malformed
// decode is an internal defect and must never be returned as a route.
func writeSolveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCostMatrix):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, tour.ErrNoRoute):
		writeError(w, r, http.StatusUnprocessableEntity, "no feasible route for this matrix")
	case errors.Is(err, tour.ErrNoIncumbent):
		writeError(w, r, http.StatusGatewayTimeout, "no route found within the time budget")
	case errors.Is(err, tour.ErrMalformedTour):
		log.Printf("solution decode failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	default:
		log.Printf("solve failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
