// File: internal/common/context_keys.go
package common

const (
	// SessionIDKey is the gin context key holding the registration session id.
	SessionIDKey = "registrationSessionID"
	// SessionTokenKey holds the signed session token issued for this request.
	SessionTokenKey = "registrationSessionToken"
	// LoggerKey holds a request-scoped *zap.Logger when the logging middleware set one.
	LoggerKey = "logger"
)
