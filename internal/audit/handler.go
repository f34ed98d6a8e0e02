// File: internal/audit/handler.go
package audit

import (
	"errors"

	"marketplace_onboarding/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("AuditHandler"),
	}
}

// RegisterRoutes mounts the admin listing. router should already carry the admin guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/registration-attempts", h.listAttempts)
}

func (h *Handler) listAttempts(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(vErrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	attempts, pagination, err := h.service.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Registration attempts retrieved successfully.", attempts, pagination)
}
