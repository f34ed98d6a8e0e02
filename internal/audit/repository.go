// File: internal/audit/repository.go
package audit

import (
	"context"
	"fmt"
	"strings"

	"marketplace_onboarding/internal/common"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, attempt *RegistrationAttempt) error
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]RegistrationAttempt, *common.Pagination, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM registration attempt repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) Create(ctx context.Context, attempt *RegistrationAttempt) error {
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create registration attempt: %w", err)
	}
	return nil
}

// List returns attempts newest first.
func (r *GORMRepository) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]RegistrationAttempt, *common.Pagination, error) {
	var attempts []RegistrationAttempt
	var total int64

	query := r.db.WithContext(ctx).Model(&RegistrationAttempt{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Outcome != "" {
		query = query.Where("outcome = ?", filter.Outcome)
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		query = query.Where("LOWER(email) = ?", strings.ToLower(email))
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting registration attempts failed: %w", err)
	}

	pq := common.PaginationQuery{Page: page, PageSize: pageSize}
	limit, offset := pq.Limit(), pq.Offset()
	pagination := common.NewPagination(total, pq.Page, limit)

	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&attempts).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching registration attempts failed: %w", err)
	}
	return attempts, pagination, nil
}
