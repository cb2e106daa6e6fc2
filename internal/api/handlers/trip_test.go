package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trip-route-service/internal/adapters/distance"
	"trip-route-service/internal/adapters/solve"
	"trip-route-service/internal/api/dto"
	"trip-route-service/internal/domain"
)

type stubLocationRepo struct {
	locations []domain.Location
	err       error
}

func (s *stubLocationRepo) ListLocations(context.Context) ([]domain.Location, error) {
	return s.locations, s.err
}

type memoryRouteCache struct {
	entries map[string][]byte
	puts    int
}

func (c *memoryRouteCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *memoryRouteCache) Put(_ context.Context, key string, payload []byte, _ time.Duration) error {
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[key] = payload
	c.puts++
	return nil
}

func testTripHandler(cache *memoryRouteCache) *TripHandler {
	repo := &stubLocationRepo{
		locations: []domain.Location{
			{Name: "Home", Cluster: "a"},
			{Name: "Airport A", Cluster: "a", Gateway: true},
			{Name: "Airport B", Cluster: "b", Gateway: true},
			{Name: "Stop", Cluster: "b"},
		},
	}

	provider := distance.NewMockMatrixProvider([]distance.MockPair{
		{From: "Home", To: "Airport A", Minutes: 10},
		{From: "Airport A", To: "Home", Minutes: 10},
		{From: "Airport B", To: "Stop", Minutes: 10},
		{From: "Stop", To: "Airport B", Minutes: 10},
	})

	h := &TripHandler{
		Repo:          repo,
		Provider:      provider,
		Solver:        solve.NewExhaustiveTourSolver(),
		FlightMinutes: 110,
		TimeLimit:     5 * time.Second,
		CacheTTL:      time.Hour,
	}
	if cache != nil {
		h.Cache = cache
	}
	return h
}

func getTrip(t *testing.T, h *TripHandler) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/trip", nil)
	rec := httptest.NewRecorder()
	h.Trip(rec, req)
	return rec
}

func TestTripHandlerSolvesSeededTrip(t *testing.T) {
	rec := getTrip(t, testTripHandler(nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var res dto.RouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(res.RouteIndices) != 5 {
		t.Fatalf("route_indices = %v, want a closed tour over 4 stops", res.RouteIndices)
	}
	if res.RouteIndices[0] != 0 || res.RouteIndices[4] != 0 {
		t.Fatalf("route_indices = %v must start and end at the root", res.RouteIndices)
	}
	if res.TotalTravelTimeMinutes != 260 {
		t.Fatalf("total = %v, want 260", res.TotalTravelTimeMinutes)
	}
	if res.GatewayIndices != [2]int{1, 2} {
		t.Fatalf("gateway_indices = %v, want [1 2]", res.GatewayIndices)
	}
	if len(res.Locations) != 4 {
		t.Fatalf("locations = %v, want all 4 stops", res.Locations)
	}
	if !res.VerifiedOptimal {
		t.Fatal("exhaustive solve must be verified optimal")
	}
}

func TestTripHandlerCachesOptimalRoutes(t *testing.T) {
	cache := &memoryRouteCache{}
	h := testTripHandler(cache)

	first := getTrip(t, h)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", first.Code)
	}
	if cache.puts != 1 {
		t.Fatalf("puts = %d, want the solved route cached once", cache.puts)
	}

	second := getTrip(t, h)
	if second.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", second.Code)
	}
	if cache.puts != 1 {
		t.Fatal("cache hit must not re-store the payload")
	}
	if first.Body.String() != second.Body.String() {
		t.Fatal("cached response must match the solved response")
	}
}

func TestTripHandlerReportsRepositoryFailure(t *testing.T) {
	h := testTripHandler(nil)
	h.Repo = &stubLocationRepo{err: context.DeadlineExceeded}

	rec := getTrip(t, h)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestTripHandlerMethodNotAllowed(t *testing.T) {
	h := testTripHandler(nil)
	req := httptest.NewRequest(http.MethodPost, "/trip", nil)
	rec := httptest.NewRecorder()
	h.Trip(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
