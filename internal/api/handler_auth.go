package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/store"
)

type waiterLoginRequest struct {
	RestaurantID int64  `json:"restaurant_id" binding:"required"`
	WaiterID     int64  `json:"waiter_id" binding:"required"`
	AccessCode   string `json:"access_code" binding:"required"`
}

// WaiterLogin authenticates a waiter with the restaurant's shared access
// code and issues a session token. Only failed attempts consume the
// sliding-window budget; a successful login records nothing.
func (h *Handler) WaiterLogin(c *gin.Context) {
	key := clientKey(c)
	if !h.allow(c, h.loginLimiter, key) {
		return
	}

	var req waiterLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": err.Error()})
		return
	}

	id, err := h.resolveWaiter(c, req)
	if err != nil {
		h.loginLimiter.Record(key)
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "error": "invalid credentials"})
		return
	}

	h.issueSession(c, id)
}

func (h *Handler) resolveWaiter(c *gin.Context, req waiterLoginRequest) (auth.Identity, error) {
	ctx := c.Request.Context()
	restaurant, err := h.store.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return auth.Identity{}, err
	}
	if !auth.VerifySecret(restaurant.AccessCodeHash, req.AccessCode) {
		return auth.Identity{}, auth.ErrInvalidSession
	}
	waiter, err := h.store.GetWaiter(ctx, req.WaiterID)
	if err != nil {
		return auth.Identity{}, err
	}
	if waiter.RestaurantID != restaurant.ID || !waiter.Active {
		return auth.Identity{}, auth.ErrInvalidSession
	}
	return auth.Identity{
		Role:         auth.RoleWaiter,
		RestaurantID: restaurant.ID,
		WaiterID:     &waiter.ID,
		Name:         waiter.Name,
	}, nil
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin authenticates a restaurant admin with email and password.
// Same record-on-failure-only policy as WaiterLogin.
func (h *Handler) AdminLogin(c *gin.Context) {
	key := clientKey(c)
	if !h.allow(c, h.loginLimiter, key) {
		return
	}

	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": err.Error()})
		return
	}

	admin, err := h.store.GetAdminByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.VerifySecret(admin.PasswordHash, req.Password) {
		h.loginLimiter.Record(key)
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "error": "invalid credentials"})
		return
	}

	h.issueSession(c, auth.Identity{
		Role:         auth.RoleAdmin,
		RestaurantID: admin.RestaurantID,
		Name:         admin.Email,
	})
}

// ResetAccessCode issues a new random staff access code for the admin's
// restaurant and returns the plaintext exactly once. Unlike login, this
// endpoint conservatively records every completed attempt: the caller is
// already authenticated, so budget here bounds reset churn, not guessing.
func (h *Handler) ResetAccessCode(c *gin.Context) {
	key := clientKey(c)
	if !h.allow(c, h.resetLimiter, key) {
		return
	}
	h.resetLimiter.Record(key)

	id := identityFrom(c)
	code, err := auth.GenerateAccessCode()
	if err != nil {
		respondError(c, err)
		return
	}
	hash, err := auth.HashSecret(code)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.UpdateAccessCodeHash(c.Request.Context(), id.RestaurantID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "not found"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_code": code})
}

// allow applies a sliding-window limiter check with a retry-after hint.
func (h *Handler) allow(c *gin.Context, limiter auth.AttemptLimiter, key string) bool {
	ok, retryAfter := limiter.Check(key)
	if ok {
		return true
	}
	c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "RATE_LIMITED", "error": "too many attempts"})
	return false
}

func (h *Handler) issueSession(c *gin.Context, id auth.Identity) {
	token, err := h.sessions.Issue(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"role":          id.Role,
		"restaurant_id": id.RestaurantID,
		"waiter_id":     id.WaiterID,
		"name":          id.Name,
	})
}
