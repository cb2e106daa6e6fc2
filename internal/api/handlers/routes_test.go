package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trip-route-service/internal/adapters/solve"
	"trip-route-service/internal/api/dto"
)

func postRoutes(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	h := &RouteHandler{Solver: solve.NewExhaustiveTourSolver()}
	req := httptest.NewRequest(http.MethodPost, "/routes", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Solve(rec, req)
	return rec
}

func TestRouteHandlerSolvesRoundTrip(t *testing.T) {
	body := `{
		"locations": [
			{"name": "Airport A", "cluster": "a", "gateway": true},
			{"name": "Airport B", "cluster": "b", "gateway": true}
		],
		"costs_minutes": [[0, 110], [110, 0]]
	}`

	rec := postRoutes(t, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var res dto.RouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(res.RouteIndices) != 3 || res.RouteIndices[0] != 0 || res.RouteIndices[1] != 1 || res.RouteIndices[2] != 0 {
		t.Fatalf("route_indices = %v, want [0 1 0]", res.RouteIndices)
	}
	if res.RouteNames[0] != "Airport A" || res.RouteNames[1] != "Airport B" {
		t.Fatalf("route_names = %v", res.RouteNames)
	}
	if res.TotalTravelTimeMinutes != 220 {
		t.Fatalf("total = %v, want 220", res.TotalTravelTimeMinutes)
	}
	if res.FlightTimeTotalMinutes != 220 || res.LocalTravelTimeMinutes != 0 {
		t.Fatalf("decomposition = (%v, %v), want (220, 0)", res.FlightTimeTotalMinutes, res.LocalTravelTimeMinutes)
	}
	if res.GatewayIndices != [2]int{0, 1} {
		t.Fatalf("gateway_indices = %v, want [0 1]", res.GatewayIndices)
	}
	if !res.VerifiedOptimal {
		t.Fatal("exhaustive solve must be verified optimal")
	}
}

func TestRouteHandlerRejectsBadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"locations": [`},
		{name: "unknown field", body: `{"stops": []}`},
		{
			name: "single location",
			body: `{"locations": [{"name": "X", "cluster": "a", "gateway": true}], "costs_minutes": [[0]]}`,
		},
		{
			name: "missing gateway flags",
			body: `{
				"locations": [
					{"name": "A", "cluster": "a"},
					{"name": "B", "cluster": "b"}
				],
				"costs_minutes": [[0, 1], [1, 0]]
			}`,
		},
		{
			name: "blank name",
			body: `{
				"locations": [
					{"name": " ", "cluster": "a", "gateway": true},
					{"name": "B", "cluster": "b", "gateway": true}
				],
				"costs_minutes": [[0, 1], [1, 0]]
			}`,
		},
		{
			name: "negative penalty",
			body: `{
				"locations": [
					{"name": "A", "cluster": "a", "gateway": true},
					{"name": "B", "cluster": "b", "gateway": true}
				],
				"costs_minutes": [[0, 1], [1, 0]],
				"gateway_penalty": -2
			}`,
		},
		{
			name: "ragged matrix",
			body: `{
				"locations": [
					{"name": "A", "cluster": "a", "gateway": true},
					{"name": "B", "cluster": "b", "gateway": true}
				],
				"costs_minutes": [[0, 1]]
			}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postRoutes(t, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouteHandlerReportsInfeasibility(t *testing.T) {
	// The only edge out of cluster b returns to the airport already
	// visited, so no closed tour exists.
	body := `{
		"locations": [
			{"name": "Home", "cluster": "a"},
			{"name": "Airport A", "cluster": "a", "gateway": true},
			{"name": "Airport B", "cluster": "b", "gateway": true}
		],
		"costs_minutes": [
			[0, 10, 1000000],
			[10, 0, 100],
			[1000000, 100, 0]
		]
	}`

	rec := postRoutes(t, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRouteHandlerMethodNotAllowed(t *testing.T) {
	h := &RouteHandler{Solver: solve.NewExhaustiveTourSolver()}
	req := httptest.NewRequest(http.MethodGet, "/routes", nil)
	rec := httptest.NewRecorder()
	h.Solve(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("Allow = %q, want POST", rec.Header().Get("Allow"))
	}
}
