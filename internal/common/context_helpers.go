// File: internal/common/context_helpers.go
package common

import (
	"github.com/gin-gonic/gin"
)

// GetSessionIDFromContext retrieves the registration session id from the Gin context.
// Returns an empty string if the session middleware did not run.
func GetSessionIDFromContext(c *gin.Context) string {
	val, exists := c.Get(SessionIDKey)
	if !exists {
		return ""
	}
	sid, ok := val.(string)
	if !ok {
		return ""
	}
	return sid
}

// GetSessionTokenFromContext retrieves the signed session token for the current request.
func GetSessionTokenFromContext(c *gin.Context) string {
	val, exists := c.Get(SessionTokenKey)
	if !exists {
		return ""
	}
	token, ok := val.(string)
	if !ok {
		return ""
	}
	return token
}
