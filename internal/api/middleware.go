package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"waiter-call-backend/internal/auth"
)

const identityKey = "identity"

// Authenticated resolves the bearer token into an identity descriptor and
// stores it on the request context. Requests without a valid session are
// rejected before any handler logic runs.
func (h *Handler) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "error": "authentication required"})
			return
		}
		id, err := h.sessions.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "error": "authentication required"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// AdminOnly rejects non-admin identities. Runs after Authenticated.
func (h *Handler) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "error": "access denied"})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}
	}
	id, _ := v.(auth.Identity)
	return id
}

// clientKey derives the rate-limit key for the request origin.
func clientKey(c *gin.Context) string {
	return auth.ClientKey(c.GetHeader("X-Forwarded-For"), c.Request.RemoteAddr)
}
