// File: internal/documents/repository.go
package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists staged document records.
type Repository interface {
	Create(ctx context.Context, doc *StagedDocument) error
	MarkAttached(ctx context.Context, sessionID string, urls []string, at time.Time) (int64, error)
	FindOrphans(ctx context.Context, createdBefore time.Time, limit int) ([]StagedDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM staged document repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) Create(ctx context.Context, doc *StagedDocument) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create staged document: %w", err)
	}
	return nil
}

// MarkAttached flags the session's documents with the given URLs as used by a registration.
func (r *GORMRepository) MarkAttached(ctx context.Context, sessionID string, urls []string, at time.Time) (int64, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&StagedDocument{}).
		Where("session_id = ? AND url IN ? AND attached = ?", sessionID, urls, false).
		Updates(map[string]interface{}{"attached": true, "attached_at": at})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark documents attached for session %s: %w", sessionID, result.Error)
	}
	return result.RowsAffected, nil
}

// FindOrphans returns unattached documents created before createdBefore, oldest first.
func (r *GORMRepository) FindOrphans(ctx context.Context, createdBefore time.Time, limit int) ([]StagedDocument, error) {
	var docs []StagedDocument
	err := r.db.WithContext(ctx).
		Where("attached = ? AND created_at < ?", false, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find orphaned documents: %w", err)
	}
	return docs, nil
}

func (r *GORMRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&StagedDocument{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete staged document %s: %w", id, err)
	}
	return nil
}
