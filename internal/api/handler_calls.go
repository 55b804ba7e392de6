package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/model"
)

type createCallRequest struct {
	TableCode string `json:"table_code" binding:"required"`
}

// CreateCall handles the customer-facing POST /api/calls. The customer is
// unauthenticated beyond knowing the table code from the QR. Notification
// dispatch is queued after the call row is committed; a push failure never
// affects the response.
func (h *Handler) CreateCall(c *gin.Context) {
	var req createCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": err.Error()})
		return
	}

	created, err := h.calls.Create(c.Request.Context(), req.TableCode)
	if err != nil {
		respondError(c, err)
		return
	}

	h.pool.Dispatch(created.ID)
	c.JSON(http.StatusCreated, created)
}

// ListCalls returns the open calls of the caller's restaurant.
func (h *Handler) ListCalls(c *gin.Context) {
	calls, err := h.calls.ListActive(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if calls == nil {
		calls = []model.Call{}
	}
	c.JSON(http.StatusOK, calls)
}

// GetCall returns one call, restaurant-scoped.
func (h *Handler) GetCall(c *gin.Context) {
	id, ok := callID(c)
	if !ok {
		return
	}
	loaded, err := h.calls.Get(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loaded)
}

// AcknowledgeCall claims a pending or missed call for the calling waiter.
func (h *Handler) AcknowledgeCall(c *gin.Context) {
	h.action(c, h.calls.Acknowledge)
}

// StartCall moves an acknowledged call into in-progress.
func (h *Handler) StartCall(c *gin.Context) {
	h.action(c, h.calls.Start)
}

// ResolveCall marks a call fully serviced.
func (h *Handler) ResolveCall(c *gin.Context) {
	h.action(c, h.calls.Resolve)
}

// CancelCall voids a non-terminal call.
func (h *Handler) CancelCall(c *gin.Context) {
	h.action(c, h.calls.Cancel)
}

// MissCall forces a call into missed (manual override).
func (h *Handler) MissCall(c *gin.Context) {
	h.action(c, h.calls.MarkMissed)
}

// action runs one lifecycle transition endpoint; every transition handler
// differs only in the service method it calls.
func (h *Handler) action(c *gin.Context, fn func(context.Context, auth.Identity, int64) (*model.Call, error)) {
	id, ok := callID(c)
	if !ok {
		return
	}
	updated, err := fn(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func callID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": "invalid call id"})
		return 0, false
	}
	return id, true
}
