package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"
)

// ORSDirectionsProvider implements the DirectionsProvider port using the
// OpenRouteService directions endpoint. The GeoJSON response is passed
// through untouched; rendering happens client-side.
type ORSDirectionsProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
}

func NewORSDirectionsProvider(apiKey string) (*ORSDirectionsProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDirectionsProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
	}

	return provider, nil
}

// Directions fetches turn-by-turn directions between two stops.
func (o *ORSDirectionsProvider) Directions(
	ctx context.Context,
	from, to domain.Location,
) (_ json.RawMessage, err error) {
	defer obs.Time(ctx, "ors.Directions")(&err)

	if from.Coords == (domain.Coordinates{}) || to.Coords == (domain.Coordinates{}) {
		return nil, fmt.Errorf("directions %q -> %q: missing coordinates", from.Name, to.Name)
	}

	url := fmt.Sprintf(
		"%s/v2/directions/%s?api_key=%s&start=%f,%f&end=%f,%f",
		o.baseURL, o.profile, o.apiKey,
		from.Coords.Lon, from.Coords.Lat,
		to.Coords.Lon, to.Coords.Lat,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("directions: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions %q -> %q: %w", from.Name, to.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("directions %q -> %q: read body: %w", from.Name, to.Name, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf(
			"directions %q -> %q: status %d: %s",
			from.Name, to.Name, resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("directions %q -> %q: response is not valid JSON", from.Name, to.Name)
	}

	return json.RawMessage(body), nil
}
