// File: internal/registration/handler.go
package registration

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"marketplace_onboarding/internal/common"
	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/marketplace"
	"marketplace_onboarding/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for registration wizard handlers.
type Handler struct {
	service Service
	tokens  session.TokenService
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new registration handler.
func NewHandler(service Service, tokens session.TokenService, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logger.Named("RegistrationHandler"),
	}
}

// RegisterRoutes mounts the wizard. router must already carry the session middleware;
// limitMW guards the endpoints that reach the marketplace API.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, limitMW gin.HandlerFunc) {
	reg := router.Group("/registration")
	{
		reg.GET("/draft", h.getDraft)
		reg.DELETE("/draft", h.resetDraft)

		roleGroup := reg.Group("/:role")
		{
			roleGroup.POST("/credentials", limitMW, h.submitCredentials)
			roleGroup.GET("/company", h.enterCompanyProfile)
			roleGroup.POST("/company", h.submitCompanyProfile)
			roleGroup.GET("/verification", h.enterVerification)
			roleGroup.POST("/verification/documents/:type", limitMW, h.uploadDocument)
			roleGroup.POST("/verification/submit", limitMW, h.submit)
		}
	}
}

func (h *Handler) sessionAndRole(c *gin.Context) (string, Role, bool) {
	sid := common.GetSessionIDFromContext(c)
	if sid == "" {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Registration session not found."))
		return "", "", false
	}
	role, err := ParseRole(c.Param("role"))
	if err != nil {
		common.RespondWithError(c, err)
		return "", "", false
	}
	return sid, role, true
}

func (h *Handler) submitCredentials(c *gin.Context) {
	sid, role, ok := h.sessionAndRole(c)
	if !ok {
		return
	}
	var req CredentialsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return
	}

	result, err := h.service.SubmitCredentials(c.Request.Context(), sid, role, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if result.State == StateDone {
		common.RespondCreated(c, result.Message, result)
		return
	}
	common.RespondOK(c, "Credentials saved.", result)
}

func (h *Handler) enterCompanyProfile(c *gin.Context) {
	sid, role, ok := h.sessionAndRole(c)
	if !ok {
		return
	}
	result, err := h.service.EnterCompanyProfile(c.Request.Context(), sid, role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, result.Message, result)
}

func (h *Handler) submitCompanyProfile(c *gin.Context) {
	sid, role, ok := h.sessionAndRole(c)
	if !ok {
		return
	}
	var req CompanyProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return
	}

	result, err := h.service.SubmitCompanyProfile(c.Request.Context(), sid, role, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	msg := result.Message
	if msg == "" {
		msg = "Company profile saved."
	}
	common.RespondOK(c, msg, result)
}

func (h *Handler) enterVerification(c *gin.Context) {
	sid, role, ok := h.sessionAndRole(c)
	if !ok {
		return
	}
	result, err := h.service.EnterVerification(c.Request.Context(), sid, role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, result.Message, result)
}

func (h *Handler) uploadDocument(c *gin.Context) {
	sid, role, ok := h.sessionAndRole(c)
	if !ok {
		return
	}
	docType, err := ParseDocumentType(c.Param("type"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"file": "The file field is required."}).
			WithMessage(fmt.Sprintf("Please select a %s file.", docType.label())))
		return
	}
	if apiErr := h.checkSize(map[string]*multipart.FileHeader{"file": fh}); apiErr != nil {
		common.RespondWithError(c, apiErr)
		return
	}

	result, err := h.service.UploadDocument(c.Request.Context(), sid, role, docType, marketplace.FileFromHeader(fh))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Document uploaded.", result)
}

func (h *Handler) submit(c *gin.Context) {
	sid, role, ok := h.sessionAndRole(c)
	if !ok {
		return
	}

	headers := map[string]*multipart.FileHeader{}
	if form, err := c.MultipartForm(); err == nil {
		for _, dt := range DocumentTypes {
			if fhs := form.File[string(dt)]; len(fhs) > 0 {
				headers[string(dt)] = fhs[0]
			}
		}
	} else if !errors.Is(err, http.ErrNotMultipart) {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid multipart form: "+err.Error()))
		return
	}
	if apiErr := h.checkSize(headers); apiErr != nil {
		common.RespondWithError(c, apiErr)
		return
	}

	files := make(map[DocumentType]marketplace.File, len(headers))
	for name, fh := range headers {
		files[DocumentType(name)] = marketplace.FileFromHeader(fh)
	}

	result, err := h.service.Submit(c.Request.Context(), sid, role, files)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, result.Message, result)
}

func (h *Handler) getDraft(c *gin.Context) {
	sid := common.GetSessionIDFromContext(c)
	result, err := h.service.Draft(c.Request.Context(), sid)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Registration draft retrieved.", result)
}

// resetDraft discards the draft and retires the session, so the next request starts a new one.
func (h *Handler) resetDraft(c *gin.Context) {
	sid := common.GetSessionIDFromContext(c)
	if err := h.service.Reset(c.Request.Context(), sid); err != nil {
		common.RespondWithError(c, err)
		return
	}
	var until time.Time
	if h.cfg.SessionTTL > 0 {
		until = time.Now().Add(h.cfg.SessionTTL)
	}
	h.tokens.Revoke(sid, until)
	common.RespondOK(c, "Registration draft discarded.", &StepResult{State: StateEmpty})
}

func (h *Handler) checkSize(headers map[string]*multipart.FileHeader) *common.APIError {
	limit := h.cfg.UploadMaxFileBytes()
	details := map[string]string{}
	for field, fh := range headers {
		if fh.Size > limit {
			details[field] = fmt.Sprintf("Files may not be larger than %d MB.", limit>>20)
		}
	}
	if len(details) == 0 {
		return nil
	}
	return common.NewValidationAPIError(details).WithMessage("One or more files are too large.")
}
