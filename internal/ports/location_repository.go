package ports

import (
	"context"

	"trip-route-service/internal/domain"
)

// Port: a boundary for retrieving the trip's locations from a data source.
type LocationRepository interface {
	// Retrieve all locations available for routing, in matrix index order.
	ListLocations(ctx context.Context) ([]domain.Location, error)
}
