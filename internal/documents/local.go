// File: internal/documents/local.go
package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"marketplace_onboarding/internal/marketplace"
	"marketplace_onboarding/internal/platform/logger"

	"go.uber.org/zap"
)

// storageBackend is the subset of filestorage.FileStorageService used here.
type storageBackend interface {
	SaveFile(src io.Reader, originalName, contentType, subDir string) (string, error)
	DeleteFile(relativePath string) error
}

// LocalUploader keeps documents on local disk and serves them from UPLOAD_PUBLIC_BASE_URL.
type LocalUploader struct {
	storage       storageBackend
	repo          Repository
	publicBaseURL string
	logger        *zap.Logger
	now           func() time.Time
}

func NewLocalUploader(storage storageBackend, repo Repository, publicBaseURL string, log *zap.Logger) *LocalUploader {
	return &LocalUploader{
		storage:       storage,
		repo:          repo,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        log.Named("LocalUploader"),
		now:           time.Now,
	}
}

// Upload saves every file under the session's directory. A failure removes the files
// already written by this call.
func (u *LocalUploader) Upload(ctx context.Context, sessionID string, files []marketplace.File) ([]string, error) {
	log := logger.FromContext(ctx, u.logger).With(zap.String("session_id", sessionID))
	urls := make([]string, 0, len(files))
	var saved []string

	rollback := func() {
		for _, rel := range saved {
			if err := u.storage.DeleteFile(rel); err != nil {
				log.Warn("Rollback of saved document failed", zap.String("path", rel), zap.Error(err))
			}
		}
	}

	for _, f := range files {
		rel, err := u.save(f, sessionID)
		if err != nil {
			rollback()
			return nil, err
		}
		saved = append(saved, rel)

		url := u.publicBaseURL + "/" + rel
		doc := &StagedDocument{
			SessionID:    sessionID,
			OriginalName: f.Name,
			ContentType:  f.ContentType,
			SizeBytes:    f.Size,
			RelativePath: rel,
			URL:          url,
		}
		if err := u.repo.Create(ctx, doc); err != nil {
			rollback()
			return nil, err
		}
		urls = append(urls, url)
	}

	log.Info("Documents stored locally", zap.Int("count", len(urls)))
	return urls, nil
}

func (u *LocalUploader) save(f marketplace.File, sessionID string) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("file %s has no content", f.Name)
	}
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()
	return u.storage.SaveFile(src, f.Name, f.ContentType, sessionID)
}

func (u *LocalUploader) Attach(ctx context.Context, sessionID string, urls []string) error {
	n, err := u.repo.MarkAttached(ctx, sessionID, urls, u.now())
	if err != nil {
		return err
	}
	logger.FromContext(ctx, u.logger).Debug("Documents attached", zap.String("session_id", sessionID), zap.Int64("count", n))
	return nil
}
