// File: internal/draft/store.go
package draft

import (
	"context"
	"errors"
	"fmt"

	"marketplace_onboarding/internal/config"
	platformRedis "marketplace_onboarding/internal/platform/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Read when the session has no draft.
var ErrNotFound = errors.New("draft not found")

// Store persists one draft per session. Write overwrites the whole object.
type Store interface {
	Write(ctx context.Context, sid string, d *Draft) error
	Read(ctx context.Context, sid string) (*Draft, error)
	Clear(ctx context.Context, sid string) error
}

// Purger is implemented by stores that keep expired drafts around until swept.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// NewStore builds the store selected by DRAFT_STORE_DRIVER. The returned cleanup
// releases connections owned by the store.
func NewStore(cfg *config.Config, db *gorm.DB, codec *Codec, logger *zap.Logger) (Store, func(), error) {
	logger = logger.Named("DraftStore")
	noop := func() {}

	switch cfg.DraftStoreDriver {
	case "memory", "":
		logger.Info("Using in-memory draft store", zap.Duration("ttl", cfg.DraftTTL))
		return NewMemoryStore(codec, cfg.DraftTTL), noop, nil
	case "redis":
		rdb, err := platformRedis.NewClient(cfg, logger)
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("Closing redis client failed", zap.Error(err))
			}
		}
		logger.Info("Using redis draft store", zap.String("prefix", cfg.RedisPrefix), zap.Duration("ttl", cfg.DraftTTL))
		return NewRedisStore(rdb, cfg.RedisPrefix, codec, cfg.DraftTTL), cleanup, nil
	case "database":
		logger.Info("Using database draft store", zap.Duration("ttl", cfg.DraftTTL))
		return NewGORMStore(db, codec, cfg.DraftTTL), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown draft store driver %q", cfg.DraftStoreDriver)
	}
}
