// File: internal/notification/fcm.go
package notification

import (
	"context"
	"fmt"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"marketplace_onboarding/internal/config"
)

// messageSender is the part of *messaging.Client the notifier uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier publishes review requests to a Firebase Cloud Messaging topic.
type FCMNotifier struct {
	client messageSender
	topic  string
	logger *zap.Logger
}

// NewFCMNotifier initializes the Firebase Admin SDK and its messaging client.
func NewFCMNotifier(cfg *config.Config, logger *zap.Logger) (*FCMNotifier, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error

	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// If ProjectID is not specified in config, let SDK infer from credentials
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}

	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Messaging client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Messaging client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.", zap.String("topic", cfg.FirebaseReviewTopic))
	return newFCMNotifier(client, cfg.FirebaseReviewTopic, logger), nil
}

func newFCMNotifier(client messageSender, topic string, logger *zap.Logger) *FCMNotifier {
	return &FCMNotifier{client: client, topic: topic, logger: logger.Named("FCMNotifier")}
}

// NotifyPendingVerification sends a data message to the review topic.
func (n *FCMNotifier) NotifyPendingVerification(ctx context.Context, p PendingVerification) error {
	data := map[string]string{
		"type":         "registration_pending_verification",
		"role":         p.Role,
		"email":        p.Email,
		"full_name":    p.FullName,
		"company_name": p.CompanyName,
		"country":      p.Country,
		"city":         p.City,
	}
	for k, v := range p.Documents {
		data[k] = v
	}

	msg := &messaging.Message{
		Topic: n.topic,
		Data:  data,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("New %s awaiting verification", p.Role),
			Body:  fmt.Sprintf("%s (%s) submitted documents for review.", p.CompanyName, p.Email),
		},
	}

	id, err := n.client.Send(ctx, msg)
	if err != nil {
		n.logger.Warn("Sending review notification failed", zap.String("email", p.Email), zap.Error(err))
		return fmt.Errorf("failed to send review notification: %w", err)
	}
	n.logger.Info("Review notification sent", zap.String("message_id", id), zap.String("email", p.Email))
	return nil
}
