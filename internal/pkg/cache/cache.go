package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// fenceTTL keeps invalidation counters around well past any entry TTL
const fenceTTL = 24 * time.Hour

// Cache is a byte-oriented key/value cache with per-entry TTL.
//
// Fence, SetIfFence and Invalidate guard read-through fills against
// concurrent writers: a reader takes the fence before loading from the
// source of truth and fills only if no Invalidate ran in between.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Fence(ctx context.Context, key string) (int64, error)
	SetIfFence(ctx context.Context, key string, fence int64, value []byte, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
	Healthy(ctx context.Context) bool
}

func fenceKey(key string) string { return key + ":fence" }

// setIfFence stores ARGV[2] under KEYS[1] only while KEYS[2] still holds ARGV[1]
var setIfFence = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache stores entries in Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis with short timeouts and verifies the connection
func NewRedisCache(ctx context.Context, opts Options) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached bytes or ErrMiss
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key for ttl
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys; absent keys are ignored
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Fence returns the invalidation counter of key, zero if it was never invalidated
func (c *RedisCache) Fence(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Get(ctx, fenceKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis fence %s: %w", key, err)
	}
	return n, nil
}

// SetIfFence stores value only if no Invalidate ran since fence was read
func (c *RedisCache) SetIfFence(ctx context.Context, key string, fence int64, value []byte, ttl time.Duration) (bool, error) {
	stored, err := setIfFence.Run(ctx, c.client, []string{key, fenceKey(key)},
		strconv.FormatInt(fence, 10), value, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis fenced set %s: %w", key, err)
	}
	return stored == 1, nil
}

// Invalidate advances the fence of key and removes the cached value
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, fenceKey(key))
		pipe.Expire(ctx, fenceKey(key), fenceTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", key, err)
	}
	return nil
}

// Healthy pings Redis
func (c *RedisCache) Healthy(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

// Close releases the client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop never stores anything; every Get misses
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Delete(context.Context, ...string) error { return nil }

func (Nop) Fence(context.Context, string) (int64, error) { return 0, nil }

func (Nop) SetIfFence(context.Context, string, int64, []byte, time.Duration) (bool, error) {
	return false, nil
}

func (Nop) Invalidate(context.Context, string) error { return nil }

func (Nop) Healthy(context.Context) bool { return false }

// GetJSON decodes a cached JSON value into dst
func GetJSON(ctx context.Context, c Cache, key string, dst interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v as JSON and caches it
func SetJSON(ctx context.Context, c Cache, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}

// SetJSONIfFence encodes v as JSON and caches it unless key was invalidated after fence was read
func SetJSONIfFence(ctx context.Context, c Cache, key string, fence int64, v interface{}, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode %s for cache: %w", key, err)
	}
	return c.SetIfFence(ctx, key, fence, raw, ttl)
}
