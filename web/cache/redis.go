// Package cache provides the Redis connection used for server-side sessions
// and login throttling. It supports both embedded Redis (miniredis) and an
// external Redis server.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/usjp/campus-panel/config"
	"github.com/usjp/campus-panel/logger"
)

// Redis wraps a client and, in embedded mode, the in-process server.
type Redis struct {
	client    *redis.Client
	miniRedis *miniredis.Miniredis
}

// Open connects to cfg.Addr, or starts an embedded server when it is empty.
func Open(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		logger.Info("Embedded Redis started on", mr.Addr())
		return &Redis{
			client:    redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			miniRedis: mr,
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("Connected to external Redis at", cfg.Addr)
	return &Redis{client: client}, nil
}

// Client returns the underlying client.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// IsEmbedded returns true if using embedded Redis.
func (r *Redis) IsEmbedded() bool {
	return r.miniRedis != nil
}

// Incr increments key and starts its expiry window on first use. It
// returns the count within the current window.
func (r *Redis) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Close closes the Redis connection and stops embedded Redis if running.
func (r *Redis) Close() error {
	err := r.client.Close()
	if r.miniRedis != nil {
		r.miniRedis.Close()
	}
	return err
}
