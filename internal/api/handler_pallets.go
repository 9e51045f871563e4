package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
)

// GetPallets handles GET /api/pallets with optional query filters.
func (h *Handler) GetPallets(c *gin.Context) {
	var filter store.PalletFilter
	filter.CurrentLocation = c.Query("currentLocation")

	var parseErr error
	boolQuery := func(param string) *bool {
		raw := c.Query(param)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			parseErr = apperr.Validation(param + " must be true or false")
			return nil
		}
		return &v
	}
	filter.IsReserved = boolQuery("isReserved")
	filter.IsSheltered = boolQuery("isSheltered")
	filter.IsInTransfer = boolQuery("isInTransfer")
	if parseErr != nil {
		respondError(c, parseErr)
		return
	}

	pallets, err := h.store.ListPallets(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, pallets, len(pallets))
}

// GetPallet handles GET /api/pallets/:number.
func (h *Handler) GetPallet(c *gin.Context) {
	pallet, err := h.store.GetPallet(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, pallet)
}

type createPalletRequest struct {
	Number          string  `json:"number"`
	CurrentLocation string  `json:"currentLocation"`
	IsReserved      bool    `json:"isReserved"`
	ReservationNote *string `json:"reservationNote"`
	IsSheltered     bool    `json:"isSheltered"`
}

// CreatePallet handles POST /api/pallets. New pallets always start
// outside of any transfer.
func (h *Handler) CreatePallet(c *gin.Context) {
	var req createPalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Number) == "" {
		respondError(c, apperr.Validation("number is required"))
		return
	}
	if strings.TrimSpace(req.CurrentLocation) == "" {
		respondError(c, apperr.Validation("currentLocation is required"))
		return
	}

	pallet := &model.Pallet{
		Number:          req.Number,
		CurrentLocation: req.CurrentLocation,
		IsReserved:      req.IsReserved,
		ReservationNote: req.ReservationNote,
		IsSheltered:     req.IsSheltered,
	}
	if err := h.store.CreatePallet(c.Request.Context(), pallet); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, pallet)
}

// UpdatePallet handles PUT /api/pallets/:number. The number is the
// natural key and cannot be changed; a number field in the body is
// ignored because the update struct simply has no slot for it.
func (h *Handler) UpdatePallet(c *gin.Context) {
	var upd store.PalletUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	pallet, err := h.store.UpdatePallet(c.Request.Context(), c.Param("number"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, pallet)
}

// DeletePallet handles DELETE /api/pallets/:number.
func (h *Handler) DeletePallet(c *gin.Context) {
	if err := h.store.DeletePallet(c.Request.Context(), c.Param("number")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "pallet deleted")
}
