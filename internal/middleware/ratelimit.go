package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type RateLimiterConfig struct {
	RPS   float64
	Burst int
	// IdleTTL is how long an unused client limiter is kept.
	IdleTTL time.Duration
}

// RateLimiter applies a token bucket per client IP. Limiters live in a
// go-cache and expire after IdleTTL without requests.
type RateLimiter struct {
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	mu       sync.Mutex
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		limiters: cache.New(config.IdleTTL, config.IdleTTL*2),
		limit:    rate.Limit(config.RPS),
		burst:    config.Burst,
		ttl:      config.IdleTTL,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limiters.Get(key); ok {
		l := v.(*rate.Limiter)
		// Refresh the expiry on use.
		rl.limiters.Set(key, l, rl.ttl)
		return l
	}

	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.Set(key, l, rl.ttl)
	return l
}

// Allow reports whether one more request from key fits in its bucket.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiterFor(key).Allow()
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			retry := time.Second
			if rl.limit > 0 {
				retry = time.Duration(float64(time.Second) / float64(rl.limit))
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			httputil.AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", "too many requests, try again later")
			return
		}
		c.Next()
	}
}
