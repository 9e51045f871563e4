package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint          string   `json:"endpoint" binding:"required"`
	P256DH            string   `json:"p256dh" binding:"required"`
	Auth              string   `json:"auth" binding:"required"`
	SubscribedPallets []string `json:"subscribed_pallets"`
}

// PutSubscription handles the creation or replacement of a push
// subscription following a set of pallets.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	sub := &model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), sub, req.SubscribedPallets); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "subscription saved")
}

// GetSubscription returns the pallet numbers a subscription follows.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		respondError(c, apperr.Validation("endpoint is required"))
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), endpoint)
	if err != nil {
		respondError(c, err)
		return
	}

	numbers := make([]string, len(sub.Pallets))
	for i, pallet := range sub.Pallets {
		numbers[i] = pallet.Number
	}
	respondData(c, http.StatusOK, gin.H{"subscribed_pallets": numbers})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, apiResponse{
			Success: false,
			Message: "push notifications are not configured",
		})
		return
	}
	respondData(c, http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
