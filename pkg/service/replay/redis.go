package replay

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
)

const redisKeyPrefix = "slotcast:replay:"

// redisCache remembers message IDs in Redis so redelivery across process
// restarts (or multiple replicas) is still caught.
type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ interfaces.ReplayCache = &redisCache{}

// NewRedis creates a Redis-backed replay cache and verifies connectivity.
func NewRedis(ctx context.Context, addr, password string, db int) (interfaces.ReplayCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr))
	}
	return &redisCache{rdb: rdb, ttl: DefaultTTL}, nil
}

func (c *redisCache) SeenBefore(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, nil
	}

	set, err := c.rdb.SetNX(ctx, redisKeyPrefix+messageID, 1, c.ttl).Result()
	if err != nil {
		return false, goerr.Wrap(err, "failed to record message ID", goerr.V("message_id", messageID))
	}
	return !set, nil
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}
