package ports

import (
	"context"

	"trip-route-service/internal/domain"
)

// Contract for acquiring the pairwise travel-cost matrix from an external
// mapping service. Implementations fill intra-cluster entries with measured
// travel times, set the gateway pair to flightMinutes in both directions,
// and price or forbid the remaining cluster-crossing pairs.
type CostMatrixProvider interface {
	BuildMatrix(ctx context.Context, locations []domain.Location, flightMinutes float64) (*domain.CostMatrix, error)
}
