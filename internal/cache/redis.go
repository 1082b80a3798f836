package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	cli *redis.Client
}

// NewRedis connects and pings; the caller decides whether a failure is fatal
func NewRedis(addr, password string, db int) (*RedisCache, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{cli: r}, nil
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(cli *redis.Client) *RedisCache {
	return &RedisCache{cli: cli}
}

func (c *RedisCache) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.cli.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.cli.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.cli.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.cli.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.cli.Del(ctx, key).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.cli.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.cli.Close()
}
