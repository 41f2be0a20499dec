// README: Read-through entity cache backed by Redis.
package propertymoney

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix   = "property_money:%d"
	versionKeyPrefix = "property_money:%d:version"

	// Outlives any in-flight read by a wide margin.
	versionTTL = 24 * time.Hour
)

// setIfVersion writes KEYS[1] only while KEYS[2] still holds ARGV[1].
// A missing version key counts as 0.
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if (current or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(redis *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: redis, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, id int64) (PropertyMoney, bool, error) {
	b, err := c.redis.Get(ctx, CacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return PropertyMoney{}, false, nil
	}
	if err != nil {
		return PropertyMoney{}, false, err
	}
	var pm PropertyMoney
	if err := sonic.Unmarshal(b, &pm); err != nil {
		return PropertyMoney{}, false, fmt.Errorf("decode cached %s %d: %w", EntityName, id, err)
	}
	return pm, true, nil
}

// Version returns the eviction counter for id.
func (c *RedisCache) Version(ctx context.Context, id int64) (int64, error) {
	v, err := c.redis.Get(ctx, versionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores pm unless its id was evicted after version was read.
func (c *RedisCache) Set(ctx context.Context, pm PropertyMoney, version int64) error {
	if pm.ID == nil {
		return errors.New("cache entity without id")
	}
	b, err := sonic.Marshal(pm)
	if err != nil {
		return err
	}
	keys := []string{CacheKey(*pm.ID), versionKey(*pm.ID)}
	return setIfVersion.Run(ctx, c.redis, keys, version, b, c.ttl.Milliseconds()).Err()
}

// Evict drops the entry and bumps the version so older reads cannot repopulate it.
func (c *RedisCache) Evict(ctx context.Context, id int64) error {
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), versionTTL)
		pipe.Del(ctx, CacheKey(id))
		return nil
	})
	return err
}

// CacheKey is the Redis key holding the cached entity with the given id.
func CacheKey(id int64) string {
	return fmt.Sprintf(cacheKeyPrefix, id)
}

func versionKey(id int64) string {
	return fmt.Sprintf(versionKeyPrefix, id)
}
