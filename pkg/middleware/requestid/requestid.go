package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	headerKey  = "X-Request-ID"
	contextKey = "request_id"
)

// Middleware tags each request with an ID and echoes it back in the
// X-Request-ID response header. IDs supplied by an upstream proxy are kept
// so log lines can be correlated across services.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerKey)
		if reqID == "" {
			reqID = generateID()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(headerKey, reqID)

		c.Next()
	}
}

// Value returns the request ID stored in the Gin context.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func generateID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}

	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
