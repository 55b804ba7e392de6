package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"waiter-call-backend/internal/model"
	"waiter-call-backend/internal/store"
)

// tableStatusResponse is what the customer poll sees: the table plus its
// latest call, if any. Push notifications are only a latency optimization;
// this endpoint is the authoritative state.
type tableStatusResponse struct {
	TableCode  string      `json:"table_code"`
	TableLabel string      `json:"table_label"`
	Active     bool        `json:"active"`
	Call       *model.Call `json:"call"`
}

// GetTableStatus handles GET /api/tables/:code/status.
func (h *Handler) GetTableStatus(c *gin.Context) {
	ctx := c.Request.Context()

	table, err := h.store.GetTableByCode(ctx, c.Param("code"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "not found"})
			return
		}
		respondError(c, err)
		return
	}

	resp := tableStatusResponse{
		TableCode:  table.Code,
		TableLabel: table.Label,
		Active:     table.Active,
	}

	latest, err := h.store.LatestCallForTable(ctx, table.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondError(c, err)
		return
	}
	resp.Call = latest

	c.JSON(http.StatusOK, resp)
}
