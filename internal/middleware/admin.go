// File: internal/middleware/admin.go
package middleware

import (
	"crypto/subtle"

	"marketplace_onboarding/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAPIKeyHeader is the header the admin endpoints authenticate with.
const AdminAPIKeyHeader = "X-Admin-API-Key"

// AdminAPIKey guards admin routes with a static key. An empty key disables them.
func AdminAPIKey(key string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("Admin API is disabled."))
			return
		}
		provided := c.GetHeader(AdminAPIKeyHeader)
		if provided == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails(AdminAPIKeyHeader+" header is required."))
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			logger.Warn("Rejected admin request", zap.String("ip", c.ClientIP()), zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrForbidden)
			return
		}
		c.Next()
	}
}
