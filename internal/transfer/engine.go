// Package transfer implements the transfer lifecycle: creating a
// transfer for a pallet, completing it at a destination, and cancelling
// it. Every operation keeps the pallet's transfer flags consistent with
// the transfer's status.
package transfer

import (
	"context"
	"errors"
	"strings"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
)

// createAttempts bounds retries when a generated transfer token collides
// with an existing one.
const createAttempts = 3

// Engine executes the transfer state machine on top of the store.
type Engine struct {
	store store.Store
}

// NewEngine creates a transfer engine.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// CreateRequest carries the input of a transfer creation.
type CreateRequest struct {
	PalletNumber        string  `json:"palletNumber"`
	OriginLocation      string  `json:"originLocation"`
	DestinationLocation string  `json:"destinationLocation"`
	ResponsibleParty    string  `json:"responsibleParty"`
	ShelterOnArrival    bool    `json:"shelterOnArrival"`
	ReserveOnArrival    bool    `json:"reserveOnArrival"`
	ReservationNote     *string `json:"reservationNote"`
}

func (r *CreateRequest) validate() error {
	switch {
	case strings.TrimSpace(r.PalletNumber) == "":
		return apperr.Validation("palletNumber is required")
	case strings.TrimSpace(r.OriginLocation) == "":
		return apperr.Validation("originLocation is required")
	case strings.TrimSpace(r.DestinationLocation) == "":
		return apperr.Validation("destinationLocation is required")
	case strings.TrimSpace(r.ResponsibleParty) == "":
		return apperr.Validation("responsibleParty is required")
	}
	return nil
}

// Create starts a new transfer for an available pallet. The pallet is
// claimed by a conditional update and the transfer row is written in the
// same store transaction, so a pallet already in transfer fails with a
// conflict and performs no writes.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*model.Transfer, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		t := &model.Transfer{
			ID:                  model.NewTransferID(),
			PalletNumber:        req.PalletNumber,
			OriginLocation:      req.OriginLocation,
			DestinationLocation: req.DestinationLocation,
			CreatedAt:           model.Today(),
			ResponsibleParty:    req.ResponsibleParty,
			Status:              model.TransferInProgress,
			ShelterOnArrival:    req.ShelterOnArrival,
			ReserveOnArrival:    req.ReserveOnArrival,
			ReservationNote:     req.ReservationNote,
		}

		err := e.store.CreateTransferForPallet(ctx, t)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, store.ErrDuplicateTransferID) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// Complete moves an in-progress transfer to its completed state. The
// pallet arrives at finalDestination when given, otherwise at the
// transfer's recorded destination; the arrival applies the transfer's
// shelter and reservation side effects.
func (e *Engine) Complete(ctx context.Context, id string, finalDestination *string) (*model.Transfer, error) {
	t, err := e.store.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	destination := t.DestinationLocation
	if finalDestination != nil && strings.TrimSpace(*finalDestination) != "" {
		destination = *finalDestination
	}

	return e.store.CompleteTransfer(ctx, id, destination, model.Today())
}

// Cancel moves an in-progress transfer to its cancelled state and frees
// the pallet. The pallet never left its origin, so nothing else on it
// changes.
func (e *Engine) Cancel(ctx context.Context, id string) (*model.Transfer, error) {
	if _, err := e.store.GetTransfer(ctx, id); err != nil {
		return nil, err
	}
	return e.store.CancelTransfer(ctx, id, model.Today())
}
