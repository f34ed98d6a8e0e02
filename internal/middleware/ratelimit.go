// File: internal/middleware/ratelimit.go
package middleware

import (
	"sync"
	"time"

	"marketplace_onboarding/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	visitorIdleTTL = 3 * time.Minute

	// ipShare is how many sessions' worth of requests one client IP may spend.
	ipShare = 4
)

// RateLimiter keeps token buckets per client IP and per registration session.
// Idle buckets expire from the cache.
type RateLimiter struct {
	mu       sync.Mutex
	visitors *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows rps requests per second per client with the given burst.
// rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		visitors: cache.New(visitorIdleTTL, time.Minute),
		limit:    limit,
		burst:    burst,
	}
}

func (l *RateLimiter) limiterFor(key string, share int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, found := l.visitors.Get(key); found {
		limiter := v.(*rate.Limiter)
		l.visitors.SetDefault(key, limiter)
		return limiter
	}
	limit := l.limit
	if limit != rate.Inf {
		limit *= rate.Limit(share)
	}
	limiter := rate.NewLimiter(limit, l.burst*share)
	l.visitors.SetDefault(key, limiter)
	return limiter
}

// Middleware checks the client IP bucket first, then the session bucket. Sessions are
// minted for any request without a token, so the IP bucket is what bounds a client that
// drops its cookie. It is sized for a few wizards behind one NAT address.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.limiterFor("ip:"+ip, ipShare).Allow() {
			common.RespondWithError(c, common.ErrTooManyRequests)
			return
		}
		if sid := common.GetSessionIDFromContext(c); sid != "" {
			if !l.limiterFor("ip:"+ip+"|sid:"+sid, 1).Allow() {
				common.RespondWithError(c, common.ErrTooManyRequests)
				return
			}
		}
		c.Next()
	}
}
