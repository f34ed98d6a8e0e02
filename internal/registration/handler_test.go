package registration

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/draft"
	"marketplace_onboarding/internal/marketplace"
	"marketplace_onboarding/internal/middleware"
	"marketplace_onboarding/internal/platform/crypto"
	"marketplace_onboarding/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type HandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	api      *MockMarketplaceAPI
	uploader *MockUploader
	drafts   draft.Store
	token    string
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SessionSecret:     "handler-test-secret",
		SessionTTL:        time.Hour,
		SessionCookieName: "reg_session",
		UploadMaxFileMB:   1,
	}
	sealer, err := crypto.NewSealer(testSealKey)
	s.Require().NoError(err)

	s.api = new(MockMarketplaceAPI)
	s.uploader = new(MockUploader)
	s.drafts = draft.NewMemoryStore(draft.NewCodecWithSealer(sealer), 0)
	svc := NewService(s.drafts, NewStaging(time.Hour), s.api, s.uploader, &recordingAuditor{}, new(MockNotifier), zap.NewNop())

	tokens := session.NewJWTService(cfg, zap.NewNop())
	s.router = gin.New()
	api := s.router.Group("/api/v1")
	api.Use(middleware.RegistrationSession(tokens, cfg, zap.NewNop()))
	NewHandler(svc, tokens, cfg, zap.NewNop()).RegisterRoutes(api, func(c *gin.Context) { c.Next() })
	s.token = ""
}

func (s *HandlerTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
	s.uploader.AssertExpectations(s.T())
}

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    StepResult      `json:"data"`
	Details json.RawMessage `json:"details"`
}

// do sends a request within the suite's registration session.
func (s *HandlerTestSuite) do(method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.token != "" {
		req.Header.Set(middleware.SessionHeader, s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if minted := w.Header().Get(middleware.SessionHeader); minted != "" {
		s.token = minted
	}

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *HandlerTestSuite) doJSON(method, path string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	b, err := json.Marshal(payload)
	s.Require().NoError(err)
	return s.do(method, path, bytes.NewReader(b), "application/json")
}

func multipartBody(files map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for field, name := range files {
		part, _ := mw.CreateFormFile(field, name)
		_, _ = part.Write([]byte("content of " + name))
	}
	_ = mw.Close()
	return body, mw.FormDataContentType()
}

func (s *HandlerTestSuite) TestSellerWizardEndToEnd() {
	w, env := s.doJSON(http.MethodPost, "/api/v1/registration/seller/credentials", map[string]string{
		"full_name":        "Jane Doe",
		"work_email":       "jane@x.com",
		"mobile_number":    "0100000000",
		"password":         "Secret123",
		"confirm_password": "Secret123",
	})
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("/seller/register/step2", env.Data.RedirectTo)
	s.NotEmpty(s.token)

	w, env = s.do(http.MethodGet, "/api/v1/registration/seller/company", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(StateStep1Filled, env.Data.State)

	w, env = s.doJSON(http.MethodPost, "/api/v1/registration/seller/company", map[string]string{
		"company_name":  "Acme",
		"country":       "AE",
		"city":          "Dubai",
		"business_type": "Distributor",
	})
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("/seller/register/step3", env.Data.RedirectTo)

	urls := map[string]string{
		"business_license": "https://cdn/license.pdf",
		"tax_certificate":  "https://cdn/tax.pdf",
		"factory_photo":    "https://cdn/factory.jpg",
	}
	for _, dt := range DocumentTypes {
		s.uploader.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(fs []marketplace.File) bool { return len(fs) == 1 })).
			Return([]string{urls[string(dt)]}, nil).Once()
		body, ct := multipartBody(map[string]string{"file": string(dt) + ".pdf"})
		w, _ = s.do(http.MethodPost, "/api/v1/registration/seller/verification/documents/"+string(dt), body, ct)
		s.Equal(http.StatusOK, w.Code, w.Body.String())
	}

	w, env = s.do(http.MethodGet, "/api/v1/registration/seller/verification", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Len(env.Data.Documents, 3)

	s.api.On("Register", mock.Anything, mock.MatchedBy(func(r marketplace.RegisterRequest) bool {
		return r.Email == "jane@x.com" && r.ConfirmPassword == "Secret123" && r.Role == "seller"
	})).Return(&marketplace.RegisteredUser{ID: "u-1", Token: "bearer"}, nil).Once()
	s.api.On("CreateSellerProfile", mock.Anything, "bearer", mock.MatchedBy(func(r marketplace.SellerProfileRequest) bool {
		return r.Documents.BusinessLicenseURL == urls["business_license"] &&
			r.Documents.TaxCertificateURL == urls["tax_certificate"] &&
			r.Documents.FactoryPhotoURL == urls["factory_photo"]
	})).Return(nil).Once()
	s.uploader.On("Attach", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	body, ct := multipartBody(map[string]string{
		"business_license": "license.pdf",
		"tax_certificate":  "tax.pdf",
		"factory_photo":    "factory.jpg",
	})
	w, env = s.do(http.MethodPost, "/api/v1/registration/seller/verification/submit", body, ct)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(StateDone, env.Data.State)
	s.Equal("/seller/dashboard", env.Data.RedirectTo)
	s.uploader.AssertNumberOfCalls(s.T(), "Upload", 3)

	w, env = s.do(http.MethodGet, "/api/v1/registration/draft", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(StateEmpty, env.Data.State)
}

func (s *HandlerTestSuite) TestUnknownRoleAndDocumentType() {
	w, _ := s.doJSON(http.MethodPost, "/api/v1/registration/admin/credentials", map[string]string{})
	s.Equal(http.StatusBadRequest, w.Code)

	body, ct := multipartBody(map[string]string{"file": "x.pdf"})
	w, _ = s.do(http.MethodPost, "/api/v1/registration/seller/verification/documents/passport", body, ct)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestStep2WithoutDraftRedirects() {
	w, env := s.do(http.MethodGet, "/api/v1/registration/buyer/company", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(StateEmpty, env.Data.State)
	s.Equal("/buyer/register", env.Data.RedirectTo)
}

func (s *HandlerTestSuite) TestValidationErrorShape() {
	w, env := s.doJSON(http.MethodPost, "/api/v1/registration/buyer/credentials", map[string]string{
		"full_name":        "Bob",
		"work_email":       "bob@x.com",
		"mobile_number":    "0100000000",
		"password":         "Secret123",
		"confirm_password": "Other",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("VALIDATION_ERROR", env.Code)
	s.Equal(msgPasswordsMismatch, env.Message)
	s.Contains(string(env.Details), "confirm_password")
}

func (s *HandlerTestSuite) TestCustomerRegistration() {
	s.api.On("Register", mock.Anything, mock.MatchedBy(func(r marketplace.RegisterRequest) bool {
		return r.Role == "user" && r.MobileNumber == "0100000000" && r.ConfirmPassword == ""
	})).Return(&marketplace.RegisteredUser{ID: "c-1"}, nil).Once()

	w, env := s.doJSON(http.MethodPost, "/api/v1/registration/customer/credentials", map[string]string{
		"full_name":     "Carl",
		"work_email":    "carl@x.com",
		"mobile_number": "0100000000",
		"password":      "Secret123",
	})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("/", env.Data.RedirectTo)
}

func (s *HandlerTestSuite) TestSubmitWithoutFiles() {
	w, env := s.do(http.MethodPost, "/api/v1/registration/seller/verification/submit", nil, "")
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("VALIDATION_ERROR", env.Code)
}

func (s *HandlerTestSuite) TestUploadRejectsOversizedFile() {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, _ := mw.CreateFormFile("file", "big.pdf")
	_, _ = part.Write(bytes.Repeat([]byte("x"), 2<<20))
	_ = mw.Close()

	w, _ := s.do(http.MethodPost, "/api/v1/registration/seller/verification/documents/tax_certificate", body, mw.FormDataContentType())
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestResetStartsNewSession() {
	_, _ = s.doJSON(http.MethodPost, "/api/v1/registration/seller/credentials", map[string]string{
		"full_name":        "Jane Doe",
		"work_email":       "jane@x.com",
		"mobile_number":    "0100000000",
		"password":         "Secret123",
		"confirm_password": "Secret123",
	})
	first := s.token

	w, _ := s.do(http.MethodDelete, "/api/v1/registration/draft", nil, "")
	s.Equal(http.StatusOK, w.Code)

	w, env := s.do(http.MethodGet, "/api/v1/registration/draft", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(StateEmpty, env.Data.State)
	s.NotEqual(first, s.token)
}
