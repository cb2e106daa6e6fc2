package ports

import (
	"context"
	"time"
)

// RouteCache stores rendered route responses keyed by a matrix fingerprint.
// Caching previously computed results is an external-layer concern; the
// optimization core itself holds no state between solves.
type RouteCache interface {
	// Get returns the cached payload and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores a payload under key for at most ttl.
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
