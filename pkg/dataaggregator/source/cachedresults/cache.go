package cachedresults

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "railcommute:cachedresults:"

// Cache holds raw provider responses so repeated lookups inside the expiration window
// don't hit the upstream API. A nil *Cache is valid and never hits.
type Cache struct {
	Cache *cache.Cache[string]
}

func (c *Cache) Setup(client *redis.Client, expiration time.Duration) {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	c.Cache = cache.New[string](redisStore)
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.Cache == nil {
		return "", false
	}

	value, err := c.Cache.Get(ctx, keyPrefix+key)
	if err != nil {
		return "", false
	}

	return value, true
}

func (c *Cache) Set(ctx context.Context, key string, value string, expiration time.Duration) {
	if c == nil || c.Cache == nil {
		return
	}

	if err := c.Cache.Set(ctx, keyPrefix+key, value, store.WithExpiration(expiration)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache result")
	}
}
