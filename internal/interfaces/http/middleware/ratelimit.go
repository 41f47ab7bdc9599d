package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/erp/pymes/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyedLimiter keeps one token bucket per key. Buckets idle for longer than
// the TTL are dropped on the next prune.
type KeyedLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	visitors map[string]*visitor
	lastGC   time.Time
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows requests events per window for every key
func NewKeyedLimiter(requests int, window time.Duration) *KeyedLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &KeyedLimiter{
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		ttl:      3 * window,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow reports whether one more event for key fits in its bucket
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RetryAfter is the wait until one token is back, in whole seconds
func (l *KeyedLimiter) RetryAfter() int {
	every := time.Duration(float64(time.Second) / float64(l.limit))
	return int(math.Ceil(every.Seconds()))
}

// Burst is the number of events allowed at once per key
func (l *KeyedLimiter) Burst() int {
	return l.burst
}

func (l *KeyedLimiter) prune(now time.Time) {
	if now.Sub(l.lastGC) < l.ttl {
		return
	}
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}
	l.lastGC = now
}

// KeyFunc extracts the rate limit key of a request
type KeyFunc func(c *gin.Context) string

// KeyByIP keys requests by client IP
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByTenantOrIP keys authenticated requests by tenant and anonymous ones
// by client IP.
func KeyByTenantOrIP(c *gin.Context) string {
	if nit := GetTenantNIT(c); nit != "" {
		return "tenant:" + nit
	}
	return "ip:" + c.ClientIP()
}

// RateLimit rejects requests over the limiter's budget with 429
func RateLimit(limiter *KeyedLimiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(key(c)) {
			c.Next()
			return
		}
		AbortRateLimited(c, limiter)
	}
}

// AbortRateLimited writes the 429 envelope with the retry headers
func AbortRateLimited(c *gin.Context, limiter *KeyedLimiter) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
	c.Header("Retry-After", strconv.Itoa(limiter.RetryAfter()))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
		dto.ErrCodeRateLimited,
		"Too many requests, please try again later",
		c.GetString(RequestIDKey),
	))
}
