// File: internal/platform/redis/client.go
package redis

import (
	"context"
	"fmt"
	"time"

	"marketplace_onboarding/internal/config"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewClient connects to the Redis server configured by REDIS_ADDR and verifies it answers.
func NewClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", cfg.RedisAddr, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return rdb, nil
}

// Key joins prefix and key with ':' the way every Redis-backed store in this service names keys.
func Key(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
