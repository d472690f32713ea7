package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	appconfig "kubetodo/pkg/config"
	"kubetodo/pkg/telemetry"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type RateLimiter struct {
	cache   *gocache.Cache
	config  map[string]appconfig.RateLimitConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(configs map[string]appconfig.RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	return &RateLimiter{
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

// RateLimitMiddleware enforces a fixed window per client IP per path.
// Paths without a configured limit pass through untouched.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		cfg, exists := rl.config[path]
		if !exists {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", path, c.ClientIP())

		rl.mutex.Lock()

		var entry *rateLimitEntry

		if v, found := rl.cache.Get(key); found {
			entry = v.(*rateLimitEntry)
		}

		now := time.Now()

		if entry == nil || now.After(entry.ResetTime) {
			entry = &rateLimitEntry{Count: 0, ResetTime: now.Add(cfg.Window)}
		}

		entry.Count++
		rl.cache.Set(key, entry, cfg.Window)

		count := entry.Count
		resetTime := entry.ResetTime

		rl.mutex.Unlock()

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, cfg.Requests-count)))

		if count > cfg.Requests {
			rl.metrics.RecordRateLimitHit(c.Request.Context(), path, "client_ip")

			if rl.logger != nil {
				rl.logger.Warn("rate limit exceeded",
					zap.String("path", path),
					zap.String("client_ip", c.ClientIP()),
					zap.Int("count", count),
				)
			}

			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())+1))
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}

		rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, "client_ip")

		c.Next()
	}
}
