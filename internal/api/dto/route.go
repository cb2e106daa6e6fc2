package dto

import "encoding/json"

// RouteLocationRequest describes one stop of an ad-hoc routing request.
type RouteLocationRequest struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Cluster string  `json:"cluster"`
	Gateway bool    `json:"gateway"`
}

// RouteRequest carries a caller-supplied cost matrix for POST /routes.
// Costs are in minutes; entry [i][j] is the travel time from location i to j.
type RouteRequest struct {
	Locations    []RouteLocationRequest `json:"locations"`
	CostsMinutes [][]float64            `json:"costs_minutes"`

	// GatewayPenalty overrides the default soft penalty on the crossing
	// edge. Omit for the default (a small fraction of the largest entry).
	GatewayPenalty *float64 `json:"gateway_penalty"`

	TimeLimitSeconds int `json:"time_limit_seconds"`
}

type RoutePointResponse struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// Segment types: the gateway crossing is a flight, everything else is a
// drive within one cluster.
const (
	SegmentFlight  = "flight"
	SegmentDriving = "driving"
)

// RouteSegmentResponse is one leg of the tour. Directions is an opaque
// payload from the directions service, attached as-is to driving legs when
// available.
type RouteSegmentResponse struct {
	From       int             `json:"from"`
	To         int             `json:"to"`
	Type       string          `json:"type"`
	Directions json.RawMessage `json:"directions,omitempty"`
}

type RouteResponse struct {
	Locations    []RoutePointResponse `json:"locations"`
	RouteIndices []int                `json:"route_indices"`
	RouteNames   []string             `json:"route_names"`

	// GatewayIndices identifies which two locations form the crossing.
	GatewayIndices [2]int `json:"gateway_indices"`

	TotalTravelTimeMinutes float64 `json:"total_travel_time_minutes"`
	FlightTimeTotalMinutes float64 `json:"flight_time_total_minutes"`
	LocalTravelTimeMinutes float64 `json:"local_travel_time_minutes"`

	// VerifiedOptimal is false when the solver hit its time budget and
	// returned the best tour found so far.
	VerifiedOptimal bool `json:"verified_optimal"`

	Segments []RouteSegmentResponse `json:"segments,omitempty"`
}
