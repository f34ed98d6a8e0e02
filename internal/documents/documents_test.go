package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marketplace_onboarding/internal/filestorage"
	"marketplace_onboarding/internal/marketplace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&StagedDocument{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func newTestStorage(t *testing.T) (*filestorage.FileStorageService, string) {
	t.Helper()
	root := t.TempDir()
	fs, err := filestorage.NewFileStorageService(root, zap.NewNop())
	require.NoError(t, err)
	return fs, root
}

// MockFileUploader is a mock type for FileUploader
type MockFileUploader struct {
	mock.Mock
}

func (m *MockFileUploader) UploadFiles(ctx context.Context, files []marketplace.File) ([]string, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestRemoteUploader_Delegates(t *testing.T) {
	api := new(MockFileUploader)
	files := []marketplace.File{marketplace.FileFromBytes("a.pdf", "application/pdf", []byte("a"))}
	api.On("UploadFiles", mock.Anything, mock.MatchedBy(func(fs []marketplace.File) bool { return len(fs) == 1 })).
		Return([]string{"https://cdn/a.pdf"}, nil).Once()

	u := NewRemoteUploader(api)
	urls, err := u.Upload(context.Background(), "s1", files)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/a.pdf"}, urls)
	assert.NoError(t, u.Attach(context.Background(), "s1", urls))
	api.AssertExpectations(t)
}

func TestLocalUploader_UploadAndAttach(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMRepository(db)
	storage, root := newTestStorage(t)
	u := NewLocalUploader(storage, repo, "http://localhost:8080/uploads/", zap.NewNop())
	ctx := context.Background()

	urls, err := u.Upload(ctx, "sess-1", []marketplace.File{
		marketplace.FileFromBytes("Business License.pdf", "application/pdf", []byte("license")),
		marketplace.FileFromBytes("factory.png", "image/png", []byte("png")),
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.True(t, strings.HasPrefix(urls[0], "http://localhost:8080/uploads/sess-1/business-license-"), urls[0])

	var docs []StagedDocument
	require.NoError(t, db.Order("created_at").Find(&docs).Error)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.False(t, d.Attached)
		_, statErr := os.Stat(filepath.Join(root, filepath.FromSlash(d.RelativePath)))
		assert.NoError(t, statErr)
	}

	require.NoError(t, u.Attach(ctx, "sess-1", urls[:1]))
	var attached int64
	require.NoError(t, db.Model(&StagedDocument{}).Where("attached = ?", true).Count(&attached).Error)
	assert.Equal(t, int64(1), attached)
}

func TestLocalUploader_RollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	storage, root := newTestStorage(t)
	u := NewLocalUploader(storage, NewGORMRepository(db), "http://x/uploads", zap.NewNop())

	_, err := u.Upload(context.Background(), "sess-2", []marketplace.File{
		marketplace.FileFromBytes("ok.pdf", "application/pdf", []byte("ok")),
		{Name: "broken.pdf", Open: func() (io.ReadCloser, error) { return nil, errors.New("disk gone") }},
	})
	require.Error(t, err)

	entries, _ := os.ReadDir(filepath.Join(root, "sess-2"))
	assert.Empty(t, entries, "files saved before the failure are removed")
}

func TestSweeper_RemovesOnlyOldOrphans(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMRepository(db)
	storage, root := newTestStorage(t)
	u := NewLocalUploader(storage, repo, "http://x/uploads", zap.NewNop())
	ctx := context.Background()

	urls, err := u.Upload(ctx, "sess-3", []marketplace.File{
		marketplace.FileFromBytes("old-orphan.pdf", "application/pdf", []byte("1")),
		marketplace.FileFromBytes("old-attached.pdf", "application/pdf", []byte("2")),
		marketplace.FileFromBytes("new-orphan.pdf", "application/pdf", []byte("3")),
	})
	require.NoError(t, err)
	require.NoError(t, u.Attach(ctx, "sess-3", []string{urls[1]}))

	old := time.Now().Add(-100 * time.Hour)
	require.NoError(t, db.Model(&StagedDocument{}).Where("url IN ?", urls[:2]).Update("created_at", old).Error)

	sweeper := newSweeper(repo, storage, 72*time.Hour, zap.NewNop())
	deleted, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	var remaining []StagedDocument
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	for _, d := range remaining {
		assert.NotContains(t, d.RelativePath, "old-orphan")
	}
	entries, err := os.ReadDir(filepath.Join(root, "sess-3"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRepository_MarkAttachedScopedToSession(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &StagedDocument{SessionID: "a", RelativePath: "a/1.pdf", URL: "u1"}))
	require.NoError(t, repo.Create(ctx, &StagedDocument{SessionID: "b", RelativePath: "b/1.pdf", URL: "u2"}))

	n, err := repo.MarkAttached(ctx, "a", []string{"u1", "u2"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.MarkAttached(ctx, "a", nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
