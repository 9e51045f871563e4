package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
	"github.com/SEB120195/gestion-palettes-backend/internal/transfer"
)

// GetTransfers handles GET /api/transfers. The optional status query
// narrows the listing to in-progress transfers or to the terminal
// history (sorted newest first).
func (h *Handler) GetTransfers(c *gin.Context) {
	transfers, err := h.store.ListTransfers(c.Request.Context(), store.TransferFilter{
		Scope: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, transfers, len(transfers))
}

// GetTransfer handles GET /api/transfers/:id.
func (h *Handler) GetTransfer(c *gin.Context) {
	t, err := h.store.GetTransfer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, t)
}

// CreateTransfer handles POST /api/transfers.
func (h *Handler) CreateTransfer(c *gin.Context) {
	var req transfer.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	t, err := h.engine.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, t)
}

type completeTransferRequest struct {
	FinalDestination *string `json:"finalDestination"`
}

// CompleteTransfer handles PUT /api/transfers/:id/complete. Followers of
// the pallet are notified of the arrival.
func (h *Handler) CompleteTransfer(c *gin.Context) {
	var req completeTransferRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validation("invalid request body"))
			return
		}
	}

	t, err := h.engine.Complete(c.Request.Context(), c.Param("id"), req.FinalDestination)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.pool != nil {
		h.pool.Dispatch(t.PalletNumber)
	}
	respondData(c, http.StatusOK, t)
}

// CancelTransfer handles PUT /api/transfers/:id/cancel.
func (h *Handler) CancelTransfer(c *gin.Context) {
	t, err := h.engine.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, t)
}
