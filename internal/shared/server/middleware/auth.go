package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-extractor/internal/shared/server/respond"
)

const (
	userIDKey     = "userId"
	guestIDHeader = "X-Guest-Id"
	guestPrefix   = "guest:"
	maxGuestIDLen = 128
)

// Auth resolves the caller from the guest header and stores the identity in context.
// Paths listed in public skip the check.
func Auth(public ...string) gin.HandlerFunc {
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if _, ok := open[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(guestIDHeader))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		if len(guestID) > maxGuestIDLen || strings.ContainsAny(guestID, "/\\") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid identity", nil)
			return
		}

		c.Set(userIDKey, guestPrefix+guestID)
		c.Set("isGuest", true)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
