package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kubetodo/internal/core/port"
	"kubetodo/pkg/config"
	"kubetodo/pkg/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "response:"

type cachedResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
	Timestamp  time.Time           `json:"timestamp"`
}

// ResponseCache caches GET bodies through the configured CacheRepository
// and drops the whole prefix on every mutation, so a list read after a
// mutation always reflects the store.
type ResponseCache struct {
	store   port.CacheRepository
	config  map[string]config.CacheConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
}

func NewResponseCache(store port.CacheRepository, configs map[string]config.CacheConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	return &ResponseCache{
		store:   store,
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

type bodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()

			// any mutation invalidates every cached read
			if c.Writer.Status() < 400 {
				if err := rc.store.DeleteByPrefix(c.Request.Context(), cacheKeyPrefix); err != nil && rc.logger != nil {
					rc.logger.Warn("cache invalidation failed", zap.Error(err))
				}
			}
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		cfg, exists := rc.config[path]
		if !exists || !cfg.Enabled {
			c.Next()
			return
		}

		key := rc.cacheKey(c)

		if data, err := rc.store.Get(c.Request.Context(), key); err == nil {
			var cached cachedResponse

			if err := json.Unmarshal(data, &cached); err == nil {
				rc.metrics.RecordCacheHit(c.Request.Context(), path)

				for name, values := range cached.Headers {
					for _, v := range values {
						c.Writer.Header().Add(name, v)
					}
				}
				c.Header("X-Cache", "HIT")
				c.Data(cached.StatusCode, c.Writer.Header().Get("Content-Type"), cached.Body)
				c.Abort()
				return
			}
		}

		rc.metrics.RecordCacheMiss(c.Request.Context(), path)

		writer := &bodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}

		cached := cachedResponse{
			StatusCode: c.Writer.Status(),
			Headers:    map[string][]string{"Content-Type": c.Writer.Header().Values("Content-Type")},
			Body:       writer.body.Bytes(),
			Timestamp:  time.Now(),
		}

		if data, err := json.Marshal(cached); err == nil {
			if err := rc.store.Set(c.Request.Context(), key, data, cfg.TTL); err != nil && rc.logger != nil {
				rc.logger.Warn("cache store failed", zap.Error(err))
			}
		}
	}
}

func (rc *ResponseCache) cacheKey(c *gin.Context) string {
	sum := md5.Sum([]byte(c.Request.URL.Path + "?" + c.Request.URL.RawQuery))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, sum)
}
