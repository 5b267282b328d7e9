package webhook

import (
	"context" // Context for Redis operations
	"time"    // TTL durations

	"github.com/redis/go-redis/v9" // Redis client
)

// ProcessedCache remembers callbacks that already reached a terminal outcome
// so re-deliveries can be acknowledged without a database round trip. It is
// an optimization only: correctness rests on the ledger store's conditional
// transition, never on this cache.
type ProcessedCache interface {
	// Seen reports whether the delivery key was already processed
	Seen(ctx context.Context, key string) (bool, error)
	// Mark records the delivery key as processed with a TTL
	Mark(ctx context.Context, key string, ttl time.Duration) error
}

// RedisProcessedCache implements ProcessedCache on Redis
type RedisProcessedCache struct {
	client *redis.Client // Redis client
}

// NewRedisProcessedCache wraps a Redis client in a ProcessedCache
func NewRedisProcessedCache(client *redis.Client) *RedisProcessedCache {
	return &RedisProcessedCache{client: client}
}

// Seen checks the processed marker for the delivery key
func (c *RedisProcessedCache) Seen(ctx context.Context, key string) (bool, error) {
	_, err := c.client.Get(ctx, "webhook:processed:"+key).Result() // Probe the marker
	if err == redis.Nil {
		return false, nil // No marker, first sighting
	} else if err != nil {
		return false, err // Redis error, caller falls through to the store
	}
	return true, nil // Marker present, already processed
}

// Mark sets the processed marker for the delivery key
func (c *RedisProcessedCache) Mark(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Set(ctx, "webhook:processed:"+key, "1", ttl).Err() // Set marker with TTL
}
