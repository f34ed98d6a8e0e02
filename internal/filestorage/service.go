// File: internal/filestorage/service.go
package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// allowedExtensions lists the document formats accepted for verification uploads.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// FileStorageService provides operations for storing and deleting files.
type FileStorageService struct {
	storagePath string // Base path for storing files, e.g., "./uploads"
	logger      *zap.Logger
}

// NewFileStorageService creates a new FileStorageService.
func NewFileStorageService(storagePath string, logger *zap.Logger) (*FileStorageService, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	// Ensure the base storage path exists
	if err := os.MkdirAll(storagePath, os.ModePerm); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	logger.Info("FileStorageService initialized", zap.String("storagePath", storagePath))
	return &FileStorageService{storagePath: storagePath, logger: logger}, nil
}

// SaveUploadedFile saves a multipart file to a sub-directory within the storage path.
func (s *FileStorageService) SaveUploadedFile(fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}

	src, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded file", zap.Error(err))
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.SaveFile(src, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), subDir)
}

// SaveFile writes src under subDir with a slugified, collision-free name derived from
// originalName, e.g. "Trade License.PDF" becomes "trade-license-1a2b3c4d.pdf".
// Returns the path relative to the storage root using forward slashes.
func (s *FileStorageService) SaveFile(src io.Reader, originalName, contentType, subDir string) (string, error) {
	extension, err := resolveExtension(originalName, contentType)
	if err != nil {
		return "", err
	}

	base := slug.Make(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))
	if base == "" {
		base = "document"
	}
	uniqueFilename := fmt.Sprintf("%s-%s%s", base, uuid.New().String()[:8], extension)

	cleanSubDir := filepath.Clean(subDir)
	if strings.HasPrefix(cleanSubDir, "..") || filepath.IsAbs(cleanSubDir) {
		s.logger.Error("Invalid subDir, attempts to navigate up", zap.String("subDir", subDir))
		return "", fmt.Errorf("invalid subDir path")
	}

	destinationDir := filepath.Join(s.storagePath, cleanSubDir)
	if err := os.MkdirAll(destinationDir, os.ModePerm); err != nil {
		s.logger.Error("Failed to create sub-directory for file storage", zap.String("path", destinationDir), zap.Error(err))
		return "", fmt.Errorf("failed to create directory %s: %w", destinationDir, err)
	}

	destinationPath := filepath.Join(destinationDir, uniqueFilename)

	dst, err := os.Create(destinationPath)
	if err != nil {
		s.logger.Error("Failed to create destination file", zap.String("path", destinationPath), zap.Error(err))
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		s.logger.Error("Failed to copy uploaded file to destination", zap.String("path", destinationPath), zap.Error(err))
		os.Remove(destinationPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Info("File saved successfully", zap.String("path", destinationPath))
	return filepath.ToSlash(filepath.Join(cleanSubDir, uniqueFilename)), nil
}

func resolveExtension(originalName, contentType string) (string, error) {
	extension := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if extension == "" {
		switch {
		case strings.HasPrefix(contentType, "application/pdf"):
			extension = ".pdf"
		case strings.HasPrefix(contentType, "image/jpeg"):
			extension = ".jpg"
		case strings.HasPrefix(contentType, "image/png"):
			extension = ".png"
		case strings.HasPrefix(contentType, "image/gif"):
			extension = ".gif"
		case strings.HasPrefix(contentType, "image/webp"):
			extension = ".webp"
		default:
			return "", fmt.Errorf("unsupported file type or missing extension: %s", contentType)
		}
	}
	if !allowedExtensions[extension] {
		return "", fmt.Errorf("unsupported file type or missing extension: %s", extension)
	}
	return extension, nil
}

// DeleteFile deletes a file given its path relative to the storagePath.
func (s *FileStorageService) DeleteFile(relativePath string) error {
	if relativePath == "" {
		return fmt.Errorf("relative path cannot be empty")
	}

	// Reject anything that could resolve outside storagePath.
	cleanRelativePath := filepath.Clean(relativePath)
	if strings.Contains(cleanRelativePath, "..") || filepath.IsAbs(cleanRelativePath) {
		s.logger.Warn("Attempt to delete file with path traversal", zap.String("relativePath", relativePath))
		return fmt.Errorf("invalid file path for deletion")
	}

	fullPath := filepath.Join(s.storagePath, cleanRelativePath)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		s.logger.Warn("Attempt to delete non-existent file", zap.String("path", fullPath))
		return nil
	}

	if err := os.Remove(fullPath); err != nil {
		s.logger.Error("Failed to delete file", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	s.logger.Info("File deleted successfully", zap.String("path", fullPath))
	return nil
}
