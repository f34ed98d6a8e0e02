// File: internal/documents/sweeper.go
package documents

import (
	"context"
	"time"

	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/metrics"

	"go.uber.org/zap"
)

const sweepBatchSize = 200

// Sweeper removes locally stored documents that no registration ever referenced,
// such as eager uploads of an abandoned wizard or files re-uploaded on a retry.
type Sweeper struct {
	repo      Repository
	storage   storageBackend
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewSweeper builds a sweeper for DOCUMENT_RETENTION_HOURS. It returns nil when uploads
// are not stored locally, since there is nothing on disk to clean.
func NewSweeper(cfg *config.Config, repo Repository, logger *zap.Logger) (*Sweeper, error) {
	if cfg.UploadDriver != "local" {
		return nil, nil
	}
	storage, err := NewStorage(cfg, logger)
	if err != nil {
		return nil, err
	}
	return newSweeper(repo, storage, cfg.DocumentRetention, logger), nil
}

func newSweeper(repo Repository, storage storageBackend, retention time.Duration, logger *zap.Logger) *Sweeper {
	if retention <= 0 {
		retention = 72 * time.Hour
	}
	return &Sweeper{
		repo:      repo,
		storage:   storage,
		retention: retention,
		logger:    logger.Named("DocumentSweeper"),
		now:       time.Now,
	}
}

// Sweep deletes orphaned documents older than the retention period and returns how many
// were removed. A file that cannot be deleted keeps its row so the next run retries it.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, failed := 0, 0

	for {
		orphans, err := s.repo.FindOrphans(ctx, cutoff, sweepBatchSize)
		if err != nil {
			return deleted, err
		}
		if len(orphans) == 0 {
			break
		}

		progressed := false
		for _, doc := range orphans {
			if err := ctx.Err(); err != nil {
				return deleted, err
			}
			if err := s.storage.DeleteFile(doc.RelativePath); err != nil {
				s.logger.Warn("Failed to delete orphaned document", zap.String("path", doc.RelativePath), zap.Error(err))
				failed++
				continue
			}
			if err := s.repo.Delete(ctx, doc.ID); err != nil {
				s.logger.Warn("Failed to delete orphaned document record", zap.String("id", doc.ID.String()), zap.Error(err))
				failed++
				continue
			}
			deleted++
			progressed = true
		}
		if !progressed || len(orphans) < sweepBatchSize {
			break
		}
	}

	metrics.AddDocumentsSwept("deleted", deleted)
	metrics.AddDocumentsSwept("failed", failed)
	s.logger.Info("Orphaned document sweep finished",
		zap.Time("cutoff", cutoff),
		zap.Int("deleted", deleted),
		zap.Int("failed", failed),
	)
	return deleted, nil
}
