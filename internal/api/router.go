package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/SEB120195/gestion-palettes-backend/config"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
	"github.com/SEB120195/gestion-palettes-backend/internal/mw"
	"github.com/SEB120195/gestion-palettes-backend/internal/notification"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
	"github.com/SEB120195/gestion-palettes-backend/internal/transfer"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, engine *transfer.Engine, pool *notification.WorkerPool, webpushOptions *webpush.Options, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, engine, pool, webpushOptions, cfg.Auth)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	authenticated := mw.Auth(s, cfg.Auth.JWTSecret)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
			authGroup.GET("/profile", authenticated, handler.Profile)
		}

		pallets := api.Group("/pallets", authenticated)
		{
			pallets.GET("", caching, handler.GetPallets)
			pallets.POST("", handler.CreatePallet)
			pallets.GET("/:number", handler.GetPallet)
			pallets.PUT("/:number", handler.UpdatePallet)
			pallets.DELETE("/:number", mw.RequireRole(model.RoleAdmin), handler.DeletePallet)
		}

		transfers := api.Group("/transfers", authenticated)
		{
			transfers.GET("", caching, handler.GetTransfers)
			transfers.POST("", handler.CreateTransfer)
			transfers.GET("/:id", handler.GetTransfer)
			transfers.PUT("/:id/complete", handler.CompleteTransfer)
			transfers.PUT("/:id/cancel", handler.CancelTransfer)
		}

		api.POST("/sync", authenticated, handler.Synchronize)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
