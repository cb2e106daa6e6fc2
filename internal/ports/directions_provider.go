package ports

import (
	"context"
	"encoding/json"

	"trip-route-service/internal/domain"
)

// Contract for retrieving turn-by-turn directions for a local route segment.
// The payload is opaque to the core: it is attached to the response as-is
// and never parsed or validated here.
type DirectionsProvider interface {
	Directions(ctx context.Context, from, to domain.Location) (json.RawMessage, error)
}
