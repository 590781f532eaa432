package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transparency-backend/internal/shared/server/respond"
)

const (
	sessionIDKey = "sessionId"

	// DefaultSessionID is used when the client sends no X-Session-Id header.
	DefaultSessionID = "local"
)

// Session resolves the workspace session from the X-Session-Id header.
// Requests without the header share the default local session.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		id := strings.TrimSpace(c.GetHeader("X-Session-Id"))
		if id == "" {
			id = DefaultSessionID
		}
		if !validSessionID(id) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid X-Session-Id", nil)
			return
		}

		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

func validSessionID(id string) bool {
	if len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
