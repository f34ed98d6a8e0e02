// File: internal/draft/memory.go
package draft

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps drafts in process memory. Drafts are lost on restart.
type MemoryStore struct {
	cache *cache.Cache
	codec *Codec
}

// NewMemoryStore returns a store whose entries expire after ttl; ttl <= 0 disables expiry.
func NewMemoryStore(codec *Codec, ttl time.Duration) *MemoryStore {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl / 2
		if cleanup < time.Minute {
			cleanup = time.Minute
		}
	}
	return &MemoryStore{cache: cache.New(expiration, cleanup), codec: codec}
}

func (s *MemoryStore) Write(ctx context.Context, sid string, d *Draft) error {
	data, err := s.codec.Encode(sid, d)
	if err != nil {
		return err
	}
	s.cache.Set(Key(sid), data, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, sid string) (*Draft, error) {
	v, found := s.cache.Get(Key(sid))
	if !found {
		return nil, ErrNotFound
	}
	data, ok := v.([]byte)
	if !ok {
		s.cache.Delete(Key(sid))
		return nil, ErrNotFound
	}
	return s.codec.Decode(sid, data)
}

func (s *MemoryStore) Clear(ctx context.Context, sid string) error {
	s.cache.Delete(Key(sid))
	return nil
}
