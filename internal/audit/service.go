// File: internal/audit/service.go
package audit

import (
	"context"

	"marketplace_onboarding/internal/common"
	"marketplace_onboarding/internal/platform/logger"

	"go.uber.org/zap"
)

// Service records and lists registration attempts.
type Service interface {
	Record(ctx context.Context, attempt *RegistrationAttempt)
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]RegistrationAttempt, *common.Pagination, error)
}

type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &ServiceImplementation{repo: repo, logger: logger.Named("AuditService")}
}

// Record stores the attempt. Failures are logged and swallowed: auditing never
// changes the outcome the user sees.
func (s *ServiceImplementation) Record(ctx context.Context, attempt *RegistrationAttempt) {
	if err := s.repo.Create(ctx, attempt); err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to record registration attempt",
			zap.String("session_id", attempt.SessionID),
			zap.String("outcome", string(attempt.Outcome)),
			zap.Error(err),
		)
	}
}

func (s *ServiceImplementation) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]RegistrationAttempt, *common.Pagination, error) {
	attempts, pagination, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to list registration attempts", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve registration attempts.")
	}
	return attempts, pagination, nil
}
