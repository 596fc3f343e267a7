package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
)

// RateLimiter is a token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	idleTTL  time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client IP, with bursts of the same size
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		visitors: make(map[string]*visitor),
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		rl.evictLocked(now)
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// evictLocked forgets clients idle for longer than idleTTL
func (rl *RateLimiter) evictLocked(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
}

// Handler rejects requests over the limit with 429
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.allow(c.ClientIP()) {
			c.Next()
			return
		}

		// One token refills every 1/limit seconds
		retryAfter := int(math.Ceil(1 / float64(rl.limit)))
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "Too many requests").
			WithSeverity(dto.ErrorSeverityWarning)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
	}
}
