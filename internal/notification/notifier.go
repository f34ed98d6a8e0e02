// File: internal/notification/notifier.go
package notification

import (
	"context"

	"marketplace_onboarding/internal/config"

	"go.uber.org/zap"
)

// PendingVerification describes a registration waiting for document review.
type PendingVerification struct {
	Role        string
	Email       string
	FullName    string
	CompanyName string
	Country     string
	City        string
	Documents   map[string]string
}

// Notifier tells reviewers that a new account awaits verification.
type Notifier interface {
	NotifyPendingVerification(ctx context.Context, p PendingVerification) error
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) NotifyPendingVerification(ctx context.Context, p PendingVerification) error {
	return nil
}

// NewNotifier returns the FCM notifier when a service account is configured, otherwise a no-op.
func NewNotifier(cfg *config.Config, logger *zap.Logger) (Notifier, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Info("FIREBASE_SERVICE_ACCOUNT_KEY_PATH not set, review notifications are disabled")
		return NoopNotifier{}, nil
	}
	return NewFCMNotifier(cfg, logger)
}
