package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yeremiapane/global-bites/utils"
)

// MenuCache holds public dish and menu listings. Any dish or menu mutation invalidates
// the whole cache. Get reports the generation it read; Set only stores under that
// generation, so a listing read before an invalidation is never served after it.
type MenuCache interface {
	Get(ctx context.Context, key string, dest interface{}) (generation int64, hit bool)
	Set(ctx context.Context, key string, generation int64, value interface{})
	Invalidate(ctx context.Context)
}

type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, dest interface{}) (int64, bool) {
	return 0, false
}
func (NoopCache) Set(ctx context.Context, key string, generation int64, value interface{}) {}
func (NoopCache) Invalidate(ctx context.Context)                                           {}

type redisCacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache stores JSON values under prefix and a generation number, and tracks its keys
// in a set so they can be dropped together.
type RedisCache struct {
	client redisCacheClient
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client redisCacheClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "menu-cache:"}
}

func (c *RedisCache) indexKey() string {
	return c.prefix + "keys"
}

func (c *RedisCache) generationKey() string {
	return c.prefix + "generation"
}

func (c *RedisCache) entryKey(generation int64, key string) string {
	return fmt.Sprintf("%sg%d:%s", c.prefix, generation, key)
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns generation -1 when redis is unreachable; Set ignores it.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		utils.ErrorLogger.Warnf("Cache generation read failed: %v", err)
		return -1, false
	}
	raw, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.ErrorLogger.Warnf("Cache read failed for %s: %v", key, err)
		}
		return gen, false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		utils.ErrorLogger.Warnf("Cache entry %s is corrupt: %v", key, err)
		return gen, false
	}
	return gen, true
}

func (c *RedisCache) Set(ctx context.Context, key string, generation int64, value interface{}) {
	if generation < 0 {
		return
	}
	if current, err := c.generation(ctx); err != nil || current != generation {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		utils.ErrorLogger.Warnf("Cache encode failed for %s: %v", key, err)
		return
	}
	entry := c.entryKey(generation, key)
	if err := c.client.Set(ctx, entry, payload, c.ttl).Err(); err != nil {
		utils.ErrorLogger.Warnf("Cache write failed for %s: %v", key, err)
		return
	}
	if err := c.client.SAdd(ctx, c.indexKey(), entry).Err(); err != nil {
		utils.ErrorLogger.Warnf("Cache index update failed for %s: %v", key, err)
	}
}

// Invalidate bumps the generation first so in-flight reads write into a dead namespace,
// then drops the indexed entries.
func (c *RedisCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		utils.ErrorLogger.Warnf("Cache generation bump failed: %v", err)
	}
	keys, err := c.client.SMembers(ctx, c.indexKey()).Result()
	if err != nil {
		utils.ErrorLogger.Warnf("Cache invalidation failed: %v", err)
		return
	}
	keys = append(keys, c.indexKey())
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		utils.ErrorLogger.Warnf("Cache invalidation failed: %v", err)
		return
	}
	utils.InfoLogger.Debugf("Invalidated %d cached listings", len(keys)-1)
}
