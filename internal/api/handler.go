package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/call"
	"waiter-call-backend/internal/notification"
	"waiter-call-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	calls    *call.Service
	sessions *auth.Sessions
	webpush  *webpush.Options
	pool     *notification.WorkerPool

	loginLimiter auth.AttemptLimiter
	resetLimiter auth.AttemptLimiter
}

// NewHandler creates a new API handler.
func NewHandler(
	s store.Store,
	calls *call.Service,
	sessions *auth.Sessions,
	webpushOptions *webpush.Options,
	pool *notification.WorkerPool,
	loginLimiter, resetLimiter auth.AttemptLimiter,
) *Handler {
	return &Handler{
		store:        s,
		calls:        calls,
		sessions:     sessions,
		webpush:      webpushOptions,
		pool:         pool,
		loginLimiter: loginLimiter,
		resetLimiter: resetLimiter,
	}
}
