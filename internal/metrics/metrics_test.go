package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestHandlerExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	IncSubmission("Seller", "PENDING")
	IncStep("", "step1", "invalid")
	IncDocumentUpload("business_license", "eager", "succeeded")
	AddDocumentsSwept("deleted", 0)
	AddDocumentsSwept("failed", 2)
	ObserveMarketplaceCall("register", 201, 120*time.Millisecond)
	ObserveMarketplaceCall("upload", 0, time.Second)

	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/metrics", gin.WrapH(Handler()))
	router.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	body := scrape(t, router)
	assert.Contains(t, body, `registration_submissions_total{outcome="pending",role="seller"}`)
	assert.Contains(t, body, `registration_steps_total{outcome="invalid",role="unknown",step="step1"}`)
	assert.Contains(t, body, `registration_document_uploads_total{document_type="business_license",mode="eager",outcome="succeeded"}`)
	assert.Contains(t, body, `registration_documents_swept_total{outcome="failed"} 2`)
	assert.NotContains(t, body, `registration_documents_swept_total{outcome="deleted"}`)
	assert.Contains(t, body, `marketplace_api_request_duration_seconds_count{operation="register",status="201"} 1`)
	assert.Contains(t, body, `marketplace_api_request_duration_seconds_count{operation="upload",status="error"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/ping/:id",status="204"} 1`)
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		MustRegister()
		MustRegister()
		_ = Handler()
	})
}
