package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderAuthMiddleware trusts the identity headers injected by the upstream
// gateway. Token validation happens at the edge; services only consume the
// resolved identity.
func HeaderAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/health") ||
			strings.HasPrefix(c.Request.URL.Path, "/ready") {
			c.Next()
			return
		}

		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = "00000000-0000-0000-0000-000000000001" // Valid UUID for dev
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
