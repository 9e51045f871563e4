package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
)

// syncRequest is the payload pushed by a disconnected client. The field
// names match what the field clients already send.
type syncRequest struct {
	Palettes   []model.Pallet   `json:"palettes"`
	Transferts []model.Transfer `json:"transferts"`
}

type syncResponse struct {
	Palettes   []model.Pallet   `json:"palettes"`
	Transferts []model.Transfer `json:"transferts"`
}

// Synchronize handles POST /api/sync: upserts every pushed snapshot by
// natural key (last write wins, no conflict detection) and answers with
// the full current state of both collections.
func (h *Handler) Synchronize(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	ctx := c.Request.Context()
	if err := h.store.SyncPallets(ctx, req.Palettes); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.SyncTransfers(ctx, req.Transferts); err != nil {
		respondError(c, err)
		return
	}

	pallets, err := h.store.ListPallets(ctx, store.PalletFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	transfers, err := h.store.ListTransfers(ctx, store.TransferFilter{})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, syncResponse{
		Palettes:   pallets,
		Transferts: transfers,
	})
}
