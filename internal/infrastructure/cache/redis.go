package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// Redis persists the client's local state in Redis under a key prefix.
// Entries never expire; the session store deletes them explicitly.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (c *Redis) SetJSON(ctx context.Context, key string, value any) error {
	return helpers.RedisSetJSON(ctx, c.rdb, c.prefix+key, value, 0)
}

func (c *Redis) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	return helpers.RedisGetJSON(ctx, c.rdb, c.prefix+key, dest)
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	return helpers.RedisDel(ctx, c.rdb, c.prefix+key)
}
