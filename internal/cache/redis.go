package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/buildcode/rideservice/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache backs the at-least-once event pipeline with idempotency keys.
// MarkEventSeen is a SetNX: the first delivery of an event claims the key,
// redeliveries see it already claimed and are collapsed.
type RedisCache struct {
	client   *redis.Client
	dedupTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, dedupTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		dedupTTL: dedupTTL,
	}
}

// MarkEventSeen returns true when this is the first observation of the
// idempotency key (rideID, event kind, payload hash).
func (c *RedisCache) MarkEventSeen(ctx context.Context, rideID, kind, payloadHash string) (bool, error) {
	key := eventKey(rideID, kind, payloadHash)
	return c.client.SetNX(ctx, key, "seen", c.dedupTTL).Result()
}

func eventKey(rideID, kind, payloadHash string) string {
	return fmt.Sprintf("event:%s:%s:%s", rideID, kind, payloadHash)
}
