// File: internal/draft/redis.go
package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	platformRedis "marketplace_onboarding/internal/platform/redis"

	goredis "github.com/redis/go-redis/v9"
)

// redisCommands is the subset of *goredis.Client the store needs.
type redisCommands interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// RedisStore keeps drafts in Redis so every replica sees the same draft.
type RedisStore struct {
	client redisCommands
	prefix string
	codec  *Codec
	ttl    time.Duration
}

// NewRedisStore returns a Redis-backed store. ttl <= 0 stores drafts without expiry.
func NewRedisStore(client redisCommands, prefix string, codec *Codec, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, prefix: prefix, codec: codec, ttl: ttl}
}

func (s *RedisStore) key(sid string) string {
	return platformRedis.Key(s.prefix, Key(sid))
}

func (s *RedisStore) Write(ctx context.Context, sid string, d *Draft) error {
	data, err := s.codec.Encode(sid, d)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sid), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context, sid string) (*Draft, error) {
	data, err := s.client.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get draft: %w", err)
	}
	return s.codec.Decode(sid, data)
}

func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}
	return nil
}
