package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = time.Hour

// LoginLimiter hands out one token bucket per client IP.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	every    rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter allows attempts requests per window for each IP. It returns
// nil when attempts is not positive, which disables limiting.
func NewLoginLimiter(attempts int, window time.Duration) *LoginLimiter {
	if attempts <= 0 || window <= 0 {
		return nil
	}
	return &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		every:    rate.Every(window / time.Duration(attempts)),
		burst:    attempts,
		now:      time.Now,
	}
}

func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	entry, ok := l.limiters[ip]
	if !ok {
		l.prune(now)
		entry = &limiterEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// prune drops idle buckets. Callers hold l.mu.
func (l *LoginLimiter) prune(now time.Time) {
	threshold := now.Add(-limiterIdleTTL)
	for ip, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, ip)
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429. A nil
// limiter lets everything through.
func RateLimit(l *LoginLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l != nil && !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse("too many login attempts"))
			return
		}
		c.Next()
	}
}
