package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"waiter-call-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint  string `json:"endpoint" binding:"required"`
	P256DH    string `json:"p256dh" binding:"required"`
	Auth      string `json:"auth" binding:"required"`
	DeviceTag string `json:"device_tag"`
}

// PutSubscription registers or replaces the calling waiter's push endpoint
// for one device. Re-subscribing from the same device replaces the prior
// row instead of accumulating duplicates.
func (h *Handler) PutSubscription(c *gin.Context) {
	id := identityFrom(c)
	if id.WaiterID == nil {
		c.JSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "error": "access denied"})
		return
	}

	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": err.Error()})
		return
	}

	sub := model.PushSubscription{
		WaiterID:     *id.WaiterID,
		RestaurantID: id.RestaurantID,
		Endpoint:     req.Endpoint,
		P256DH:       req.P256DH,
		Auth:         req.Auth,
		DeviceTag:    req.DeviceTag,
	}
	if sub.DeviceTag == "" {
		sub.DeviceTag = c.Request.UserAgent()
	}

	if err := h.store.UpsertSubscription(c.Request.Context(), &sub); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// GetSubscriptions lists the calling waiter's registered endpoints.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	id := identityFrom(c)
	if id.WaiterID == nil {
		c.JSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "error": "access denied"})
		return
	}

	subs, err := h.store.SubscriptionsForWaiter(c.Request.Context(), *id.WaiterID)
	if err != nil {
		respondError(c, err)
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	c.JSON(http.StatusOK, subs)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the calling waiter's endpoints.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	id := identityFrom(c)
	if id.WaiterID == nil {
		c.JSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "error": "access denied"})
		return
	}

	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": err.Error()})
		return
	}

	if err := h.store.DeleteSubscriptionByEndpoint(c.Request.Context(), *id.WaiterID, req.Endpoint); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
