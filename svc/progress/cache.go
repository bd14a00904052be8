package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds history cache staleness. Writes invalidate
// explicitly; the TTL only covers missed invalidations.
const DefaultCacheTTL = 5 * time.Minute

// HistoryCache caches serialized weight history in Redis. The limit is part
// of the key so free and premium views never mix.
type HistoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHistoryCache creates a cache with the given TTL; ttl <= 0 uses
// DefaultCacheTTL. Panics if client is nil.
func NewHistoryCache(client *redis.Client, ttl time.Duration) *HistoryCache {
	if client == nil {
		panic("progress: redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &HistoryCache{client: client, ttl: ttl}
}

func (c *HistoryCache) key(userID uuid.UUID, limit int) string {
	return fmt.Sprintf("progress:history:%s:%d", userID, limit)
}

// Get returns the cached history, ok=false on miss or any error.
func (c *HistoryCache) Get(ctx context.Context, userID uuid.UUID, limit int) ([]WeightLog, bool) {
	data, err := c.client.Get(ctx, c.key(userID, limit)).Bytes()
	if err != nil {
		return nil, false
	}

	var logs []WeightLog
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, false
	}
	return logs, true
}

// Set stores the history under the user's key.
func (c *HistoryCache) Set(ctx context.Context, userID uuid.UUID, limit int, logs []WeightLog) error {
	data, err := json.Marshal(logs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(userID, limit), data, c.ttl).Err()
}

// Invalidate drops every cached view of the user's history.
func (c *HistoryCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	pattern := fmt.Sprintf("progress:history:%s:*", userID)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
