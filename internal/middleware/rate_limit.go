package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/laxmielectronics/site-api/internal/models"
)

const (
	visitorTTL     = 3 * time.Minute
	visitorCleanup = time.Minute
)

// RateLimiter is an in-memory token bucket per client IP. Idle visitors
// expire from the cache after visitorTTL.
type RateLimiter struct {
	visitors *cache.Cache
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst size
}

// NewRateLimiter creates a new rate limiter
// r: requests per second, b: burst size
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: cache.New(visitorTTL, visitorCleanup),
		r:        r,
		b:        b,
	}
}

// getVisitor returns the limiter for ip and refreshes its expiry
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, found := rl.visitors.Get(ip); found {
		limiter := v.(*rate.Limiter)
		rl.visitors.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(rl.r, rl.b)
	rl.visitors.SetDefault(ip, limiter)
	return limiter
}

// Visitors returns the number of tracked client IPs
func (rl *RateLimiter) Visitors() int {
	return rl.visitors.ItemCount()
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.SubmissionResult{
				Success: false,
				Message: "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
