// File: internal/draft/gorm.go
package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is the row behind the database store.
type Record struct {
	SessionID string     `gorm:"primaryKey;size:64"`
	Payload   []byte     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM.
func (Record) TableName() string {
	return "registration_drafts"
}

// GORMStore keeps drafts in the service database.
type GORMStore struct {
	db    *gorm.DB
	codec *Codec
	ttl   time.Duration
	now   func() time.Time
}

// NewGORMStore returns a database-backed store. ttl <= 0 keeps drafts until cleared.
func NewGORMStore(db *gorm.DB, codec *Codec, ttl time.Duration) *GORMStore {
	return &GORMStore{db: db, codec: codec, ttl: ttl, now: time.Now}
}

func (s *GORMStore) Write(ctx context.Context, sid string, d *Draft) error {
	data, err := s.codec.Encode(sid, d)
	if err != nil {
		return err
	}
	rec := Record{SessionID: sid, Payload: data}
	if s.ttl > 0 {
		exp := s.now().Add(s.ttl)
		rec.ExpiresAt = &exp
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to write draft for session %s: %w", sid, err)
	}
	return nil
}

func (s *GORMStore) Read(ctx context.Context, sid string) (*Draft, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("session_id = ?", sid).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read draft for session %s: %w", sid, err)
	}
	if rec.ExpiresAt != nil && !rec.ExpiresAt.After(s.now()) {
		return nil, ErrNotFound
	}
	return s.codec.Decode(sid, rec.Payload)
}

func (s *GORMStore) Clear(ctx context.Context, sid string) error {
	if err := s.db.WithContext(ctx).Where("session_id = ?", sid).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("failed to clear draft for session %s: %w", sid, err)
	}
	return nil
}

// PurgeExpired deletes drafts whose TTL has passed and returns how many were removed.
func (s *GORMStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&Record{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired drafts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
