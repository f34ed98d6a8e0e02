package registration

import (
	"context"
	"sync"

	"marketplace_onboarding/internal/audit"
	"marketplace_onboarding/internal/marketplace"
	"marketplace_onboarding/internal/notification"

	"github.com/stretchr/testify/mock"
)

// MockMarketplaceAPI is a mock type for MarketplaceAPI
type MockMarketplaceAPI struct {
	mock.Mock
}

func (m *MockMarketplaceAPI) Register(ctx context.Context, req marketplace.RegisterRequest) (*marketplace.RegisteredUser, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.RegisteredUser), args.Error(1)
}

func (m *MockMarketplaceAPI) CreateSellerProfile(ctx context.Context, token string, req marketplace.SellerProfileRequest) error {
	args := m.Called(ctx, token, req)
	return args.Error(0)
}

func (m *MockMarketplaceAPI) CreateBuyerProfile(ctx context.Context, token string, req marketplace.BuyerProfileRequest) error {
	args := m.Called(ctx, token, req)
	return args.Error(0)
}

// MockUploader is a mock type for documents.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, sessionID string, files []marketplace.File) ([]string, error) {
	args := m.Called(ctx, sessionID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUploader) Attach(ctx context.Context, sessionID string, urls []string) error {
	args := m.Called(ctx, sessionID, urls)
	return args.Error(0)
}

// MockNotifier is a mock type for notification.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyPendingVerification(ctx context.Context, p notification.PendingVerification) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// recordingAuditor keeps every attempt in memory.
type recordingAuditor struct {
	mu       sync.Mutex
	attempts []*audit.RegistrationAttempt
}

func (r *recordingAuditor) Record(ctx context.Context, attempt *audit.RegistrationAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
}

func (r *recordingAuditor) last() *audit.RegistrationAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.attempts) == 0 {
		return nil
	}
	return r.attempts[len(r.attempts)-1]
}

// fileNames lets mock matchers check which documents went into an upload.
func fileNames(files []marketplace.File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func testFiles() map[DocumentType]marketplace.File {
	return map[DocumentType]marketplace.File{
		DocBusinessLicense: marketplace.FileFromBytes("license.pdf", "application/pdf", []byte("license")),
		DocTaxCertificate:  marketplace.FileFromBytes("tax.pdf", "application/pdf", []byte("tax")),
		DocFactoryPhoto:    marketplace.FileFromBytes("factory.jpg", "image/jpeg", []byte("photo")),
	}
}
