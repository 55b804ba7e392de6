package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"waiter-call-backend/internal/call"
)

// respondError maps a domain error onto a stable code and HTTP status.
// Authorization failures are deliberately vague: forbidden never reveals
// which check failed, and cross-restaurant lookups read as not found so
// call ids do not leak. Invalid transitions keep their specific reason so
// a client can show "already acknowledged by someone else". Anything
// unclassified is a 500 with no internal detail.
func respondError(c *gin.Context, err error) {
	var derr *call.Error
	if errors.As(err, &derr) {
		switch derr.Code {
		case "UNAUTHENTICATED":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": derr.Code, "error": "authentication required"})
		case "FORBIDDEN", "NOT_ASSIGNED":
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "error": "access denied"})
		case "NOT_FOUND", "CALL_NOT_FOUND", "WRONG_RESTAURANT":
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "not found"})
		case "INVALID_TRANSITION":
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"code": derr.Code, "error": derr.Message})
		case "INVALID_ARGUMENT":
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": derr.Code, "error": derr.Message})
		case "RATE_LIMITED":
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": derr.Code, "error": derr.Message})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	log.Printf("Unexpected error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
