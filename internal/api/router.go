package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"waiter-call-backend/config"
	"waiter-call-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, srvCfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(srvCfg.RateLimitPerSec), srvCfg.RateLimitBurst)

	cacheTTL := time.Duration(srvCfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*time.Minute)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Customer-facing, unauthenticated beyond the table code.
		api.POST("/calls", h.CreateCall)
		api.GET("/tables/:code/status", caching, h.GetTableStatus)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		// Authentication; the sliding-window limiter runs inside the
		// handlers so only failed attempts consume budget.
		api.POST("/auth/waiter", h.WaiterLogin)
		api.POST("/auth/admin", h.AdminLogin)

		staff := api.Group("")
		staff.Use(h.Authenticated())
		{
			staff.GET("/calls", h.ListCalls)
			staff.GET("/calls/:id", h.GetCall)
			staff.POST("/calls/:id/acknowledge", h.AcknowledgeCall)
			staff.POST("/calls/:id/start", h.StartCall)
			staff.POST("/calls/:id/resolve", h.ResolveCall)
			// Alias kept for admin tooling; force-completion is resolve
			// performed by an admin.
			staff.POST("/calls/:id/complete", h.ResolveCall)
			staff.POST("/calls/:id/cancel", h.CancelCall)
			staff.POST("/calls/:id/miss", h.MissCall)

			staff.GET("/subscriptions", h.GetSubscriptions)
			staff.PUT("/subscriptions", h.PutSubscription)
			staff.DELETE("/subscriptions", h.DeleteSubscription)

			staff.POST("/auth/access_code/reset", h.AdminOnly(), h.ResetAccessCode)
		}
	}

	return r
}
