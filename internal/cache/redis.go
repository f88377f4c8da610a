package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mixscout/mixscout/config"
)

const connectTimeout = 10 * time.Second

// Redis stores entries in an external Redis instance.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Connect builds and pings a Redis client from configuration. Returns
// (nil, nil) when no backend is configured at all.
func Connect(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	var client *redis.Client

	switch {
	case cfg.RedisURL != "":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts.DialTimeout = connectTimeout
		opts.ReadTimeout = connectTimeout
		opts.WriteTimeout = connectTimeout
		client = redis.NewClient(opts)
	case cfg.RedisHost != "":
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisHost + ":" + cfg.RedisPort,
			DialTimeout:  connectTimeout,
			ReadTimeout:  connectTimeout,
			WriteTimeout: connectTimeout,
		})
	default:
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
