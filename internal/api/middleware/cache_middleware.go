package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheMiddleware stores successful per-user GET responses in Redis. Keys
// follow cache.DashboardKey so tracking writes can drop them.
type CacheMiddleware struct {
	cache *cache.RedisClient
	ttl   time.Duration
}

func NewCacheMiddleware(cache *cache.RedisClient, ttl time.Duration) *CacheMiddleware {
	return &CacheMiddleware{cache: cache, ttl: ttl}
}

// responseBuffer copies everything written to the client.
type responseBuffer struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func newResponseBuffer(original gin.ResponseWriter) *responseBuffer {
	return &responseBuffer{ResponseWriter: original, body: &bytes.Buffer{}}
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseBuffer) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// CacheResponse must run after the auth middleware.
func (m *CacheMiddleware) CacheResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if m.cache == nil || !ok || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cache.DashboardKey(userID, c.Request.URL.RequestURI())
		if cached, err := m.cache.Get(c.Request.Context(), key); err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		writer := c.Writer
		buff := newResponseBuffer(writer)
		c.Writer = buff
		c.Header("X-Cache", "MISS")

		c.Next()

		if buff.Status() == http.StatusOK {
			if err := m.cache.Set(c.Request.Context(), key, buff.body.String(), m.ttl); err != nil {
				log.Error("Failed to cache response", zap.Error(err))
			}
		}
		c.Writer = writer
	}
}
