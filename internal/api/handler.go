package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"github.com/SEB120195/gestion-palettes-backend/config"
	"github.com/SEB120195/gestion-palettes-backend/internal/notification"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
	"github.com/SEB120195/gestion-palettes-backend/internal/transfer"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *transfer.Engine
	pool    *notification.WorkerPool
	webpush *webpush.Options
	auth    config.AuthConfig
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, engine *transfer.Engine, pool *notification.WorkerPool, webpushOptions *webpush.Options, authCfg config.AuthConfig) *Handler {
	return &Handler{
		store:   s,
		engine:  engine,
		pool:    pool,
		webpush: webpushOptions,
		auth:    authCfg,
	}
}
