// File: internal/documents/uploader.go
package documents

import (
	"context"
	"fmt"

	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/filestorage"
	"marketplace_onboarding/internal/marketplace"

	"go.uber.org/zap"
)

// Uploader stores verification documents and returns one URL per file, in order.
type Uploader interface {
	Upload(ctx context.Context, sessionID string, files []marketplace.File) ([]string, error)
	// Attach records that a registration referenced urls, so they are not swept.
	Attach(ctx context.Context, sessionID string, urls []string) error
}

// FileUploader is the part of the marketplace client the remote uploader uses.
type FileUploader interface {
	UploadFiles(ctx context.Context, files []marketplace.File) ([]string, error)
}

// RemoteUploader sends documents to the marketplace upload endpoint.
type RemoteUploader struct {
	api FileUploader
}

func NewRemoteUploader(api FileUploader) *RemoteUploader {
	return &RemoteUploader{api: api}
}

func (u *RemoteUploader) Upload(ctx context.Context, sessionID string, files []marketplace.File) ([]string, error) {
	return u.api.UploadFiles(ctx, files)
}

// Attach is a no-op: the marketplace owns remote files.
func (u *RemoteUploader) Attach(ctx context.Context, sessionID string, urls []string) error {
	return nil
}

// NewStorage returns the local file store rooted at UPLOAD_STORAGE_PATH.
func NewStorage(cfg *config.Config, logger *zap.Logger) (*filestorage.FileStorageService, error) {
	return filestorage.NewFileStorageService(cfg.UploadStoragePath, logger.Named("FileStorage"))
}

// NewUploader returns the uploader selected by UPLOAD_DRIVER.
func NewUploader(cfg *config.Config, api *marketplace.Client, repo Repository, logger *zap.Logger) (Uploader, error) {
	switch cfg.UploadDriver {
	case "remote", "":
		return NewRemoteUploader(api), nil
	case "local":
		storage, err := NewStorage(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewLocalUploader(storage, repo, cfg.UploadPublicBaseURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.UploadDriver)
	}
}
