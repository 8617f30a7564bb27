package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/usjp/campus-panel/logger"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	Limiter Limiter
	KeyFunc func(c *gin.Context) string
	// OnLimit renders the rejection. Defaults to 429 with no body.
	OnLimit gin.HandlerFunc
}

// RateLimitMiddleware throttles the routes it is attached to.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return func(c *gin.Context) {
		if config.Limiter == nil {
			c.Next()
			return
		}
		key := config.KeyFunc(c)
		if config.Limiter.Allow(c.Request.Context(), key) {
			c.Next()
			return
		}
		logger.Warningf("Rate limit exceeded for %s on %s", key, c.Request.URL.Path)
		if config.OnLimit != nil {
			config.OnLimit(c)
			c.Abort()
			return
		}
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
}

// MemoryLimiter keeps a token bucket per key in process memory.
type MemoryLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter allows perMinute events per key with the given burst.
func NewMemoryLimiter(perMinute, burst int) *MemoryLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &MemoryLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

// Sweep forgets keys idle for longer than idle.
func (l *MemoryLimiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-idle)
	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Counter is a shared windowed counter such as cache.Redis.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// WindowLimiter allows perMinute events per key in fixed one minute
// windows kept in a shared counter.
type WindowLimiter struct {
	Counter   Counter
	PerMinute int
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) bool {
	count, err := l.Counter.Incr(ctx, "ratelimit:"+key, time.Minute)
	if err != nil {
		// a broken counter must not lock everyone out
		logger.Warning("Rate limit increment failed:", err)
		return true
	}
	return count <= int64(l.PerMinute)
}
