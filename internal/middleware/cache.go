package middleware

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// PublicCacheConfig configures the public response cache
type PublicCacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// DefaultPublicCacheConfig caches public search results briefly
func DefaultPublicCacheConfig() PublicCacheConfig {
	return PublicCacheConfig{
		TTL:       30 * time.Second,
		KeyPrefix: "cms:http:",
	}
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// PublicCache caches anonymous GET responses per site in Redis.
// Signed-in callers always bypass it; a nil client disables it.
func PublicCache(redisClient *redis.Client, cfg PublicCacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || c.Request.Method != http.MethodGet || IsAuthenticated(c) {
			c.Next()
			return
		}

		key := cfg.KeyPrefix + c.Param("siteId") + ":" + cacheKey(c.Request.URL.Path, c.Request.URL.RawQuery)
		ctx := c.Request.Context()

		if val, err := redisClient.Get(ctx, key).Bytes(); err == nil {
			var cached cachedResponse
			if json.Unmarshal(val, &cached) == nil {
				c.Header("X-Cache", "HIT")
				c.Data(cached.Status, "application/json; charset=utf-8", []byte(cached.Body))
				c.Abort()
				return
			}
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Header("X-Cache", "MISS")

		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		data, err := json.Marshal(cachedResponse{Status: w.Status(), Body: string(w.body)})
		if err != nil {
			return
		}
		if err := redisClient.Set(ctx, key, data, cfg.TTL).Err(); err != nil {
			l := loggerFor(c)
			l.Debug().Err(err).Msg("public cache store skipped")
		}
	}
}

func cacheKey(path, query string) string {
	raw := path
	if query != "" {
		raw += "?" + query
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))[:32]
}

// captureWriter keeps a copy of the response body
type captureWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}
