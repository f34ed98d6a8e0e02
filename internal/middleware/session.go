// File: internal/middleware/session.go
package middleware

import (
	"net/http"
	"time"

	"marketplace_onboarding/internal/common"
	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHeader carries the registration session token for clients without cookies.
const SessionHeader = "X-Registration-Session"

// RegistrationSession resolves the registration session from the header or cookie.
// A missing, invalid or revoked token gets replaced by a freshly minted one, which is
// returned both as a cookie and in the SessionHeader response header.
func RegistrationSession(tokens session.TokenService, cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	cookieName := cfg.SessionCookieName
	if cookieName == "" {
		cookieName = "reg_session"
	}

	return func(c *gin.Context) {
		raw := c.GetHeader(SessionHeader)
		if raw == "" {
			raw, _ = c.Cookie(cookieName)
		}

		if raw != "" {
			claims, err := tokens.Parse(raw)
			if err == nil {
				c.Set(common.SessionIDKey, claims.SessionID)
				c.Set(common.SessionTokenKey, raw)
				c.Next()
				return
			}
			logger.Debug("Discarding registration session token", zap.Error(err))
		}

		token, sid, expiresAt, err := tokens.Issue()
		if err != nil {
			common.RespondWithError(c, err)
			return
		}

		// Without an expiry the cookie lives for the browser session.
		maxAge := 0
		if !expiresAt.IsZero() {
			maxAge = int(time.Until(expiresAt).Seconds())
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, token, maxAge, "/", "", cfg.SessionSecure, true)
		c.Header(SessionHeader, token)

		c.Set(common.SessionIDKey, sid)
		c.Set(common.SessionTokenKey, token)
		c.Next()
	}
}
