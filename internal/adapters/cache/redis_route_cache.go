package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRouteCache stores rendered route responses keyed by a cost-matrix
// fingerprint. Solving is expensive (minutes of MIP search in the worst
// case) while the seeded trip matrix rarely changes, so responses are
// cached outside the optimization core.
type RedisRouteCache struct {
	client *redis.Client
}

func NewRedisRouteCache(client *redis.Client) *RedisRouteCache {
	return &RedisRouteCache{client: client}
}

func (c *RedisRouteCache) key(k string) string { return "route:" + k }

// Get returns the cached payload and whether the key was present.
func (c *RedisRouteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.client == nil {
		return nil, false, errors.New("route cache: client is nil")
	}

	payload, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("route cache: get %q: %w", key, err)
	}

	return payload, true, nil
}

// Put stores a payload under key for at most ttl.
func (c *RedisRouteCache) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if c.client == nil {
		return errors.New("route cache: client is nil")
	}

	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("route cache: set %q: %w", key, err)
	}

	return nil
}
