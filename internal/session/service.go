// File: internal/session/service.go
package session

import (
	"errors"
	"fmt"
	"time"

	"marketplace_onboarding/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const issuer = "marketplace_onboarding"

var (
	ErrInvalidToken = errors.New("invalid registration session token")
	ErrRevoked      = errors.New("registration session has been revoked")
)

// Claims identify one registration session.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenService issues and validates registration session tokens.
type TokenService interface {
	Issue() (token, sessionID string, expiresAt time.Time, err error)
	Parse(token string) (*Claims, error)
	Revoke(sessionID string, until time.Time)
}

type JWTService struct {
	secret  []byte
	ttl     time.Duration
	revoked *cache.Cache
	logger  *zap.Logger
	now     func() time.Time
}

// NewJWTService creates the HS256 session token service. A SessionTTL of zero issues
// tokens without an expiry, so a draft stays reachable until it is submitted or reset.
func NewJWTService(cfg *config.Config, logger *zap.Logger) TokenService {
	ttl := cfg.SessionTTL
	if ttl < 0 {
		ttl = 0
	}
	return &JWTService{
		secret:  []byte(cfg.SessionSecret),
		ttl:     ttl,
		revoked: cache.New(ttl, 10*time.Minute),
		logger:  logger.Named("SessionService"),
		now:     time.Now,
	}
}

// Issue mints a token for a fresh session id. expiresAt is zero when tokens do not expire.
func (s *JWTService) Issue() (string, string, time.Time, error) {
	now := s.now()
	sid := uuid.NewString()

	claims := &Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   sid,
			ID:        uuid.NewString(),
		},
	}
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign session token", zap.Error(err))
		return "", "", time.Time{}, fmt.Errorf("could not sign session token: %w", err)
	}
	return signed, sid, expiresAt, nil
}

// Parse validates the token signature, expiry and revocation.
func (s *JWTService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	if _, found := s.revoked.Get(claims.SessionID); found {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke rejects tokens for sessionID until the given time, or for good when until is
// not in the future. Revocations are process-local.
func (s *JWTService) Revoke(sessionID string, until time.Time) {
	d := until.Sub(s.now())
	if d <= 0 {
		d = cache.NoExpiration
	}
	s.revoked.Set(sessionID, true, d)
}
