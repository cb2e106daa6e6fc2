package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// geocodeMany resolves names individually using OpenRouteService
// (/geocode/search). Calls are deduplicated and may be retried via
// doWithRetry.
func (o *ORSMatrixProvider) geocodeMany(
	ctx context.Context,
	names []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.geocodeMany")(&err)

	endpoint := o.baseURL + "/geocode/search"

	seen := make(map[string]struct{}, len(names))
	out := make(map[string]domain.Coordinates)
	for _, name := range names {
		norm := o.normalize(name)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}

		resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
			req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			q := req.URL.Query()
			q.Set("text", norm)
			q.Set("size", "1")
			req.URL.RawQuery = q.Encode()
			return req, nil
		})
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		var decoded geocodeResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("decode geocode response: %w", decodeErr)
		}

		if len(decoded.Features) == 0 {
			return nil, fmt.Errorf("no geocode results for %q", name)
		}

		coords := decoded.Features[0].Geometry.Coordinates
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid coordinate format for %q", name)
		}

		out[norm] = domain.Coordinates{
			Lon: coords[0],
			Lat: coords[1],
		}
	}

	return out, nil
}
