package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "storefront:"
	clearScanCount     = 100
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key so Clear leaves unrelated data alone.
	Prefix string
}

// Redis shares persistent entries between every storefront process pointed
// at the same server. Entries carry no TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects and pings the server before returning.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: rdb, prefix: prefix}, nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis cache get %q: %w", key, err)
	}
	return v, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis cache set %q: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the configured prefix.
func (c *Redis) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", clearScanCount).Iterator()

	batch := make([]string, 0, clearScanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearScanCount {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis cache clear: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis cache scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis cache clear: %w", err)
		}
	}
	return nil
}

func (c *Redis) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
