package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"trip-route-service/internal/domain"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// fetchDurationMatrix retrieves the full pairwise driving-duration matrix in
// minutes for one cluster's coordinates using the OpenRouteService matrix
// endpoint.
func (o *ORSMatrixProvider) fetchDurationMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
) ([][]float64, error) {
	n := len(coords)
	if n < 2 {
		return nil, fmt.Errorf("duration matrix needs at least 2 coordinates, got %d", n)
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, n)
	for _, c := range coords {
		locations = append(locations, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"duration"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Durations) != n {
		return nil, fmt.Errorf("expected %d duration rows, got %d", n, len(mr.Durations))
	}

	out := make([][]float64, n)
	for i, row := range mr.Durations {
		if len(row) != n {
			return nil, fmt.Errorf("duration row %d has %d entries, want %d", i, len(row), n)
		}
		out[i] = make([]float64, n)
		for j, secondsPtr := range row {
			if i == j {
				continue
			}
			if secondsPtr == nil {
				return nil, fmt.Errorf("matrix returned no duration for pair (%d, %d)", i, j)
			}
			out[i][j] = *secondsPtr / 60
		}
	}

	return out, nil
}
