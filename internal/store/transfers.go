package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
)

func (s *gormStore) GetTransfer(ctx context.Context, id string) (*model.Transfer, error) {
	var transfer model.Transfer
	err := s.db.WithContext(ctx).First(&transfer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("transfer not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &transfer, nil
}

// ListTransfers returns transfers for the given scope. The terminal
// scope is sorted by creation time, newest first.
func (s *gormStore) ListTransfers(ctx context.Context, filter TransferFilter) ([]model.Transfer, error) {
	q := s.db.WithContext(ctx).Model(&model.Transfer{})
	switch filter.Scope {
	case TransferScopeAll:
	case TransferScopeInProgress:
		q = q.Where("status = ?", model.TransferInProgress)
	case TransferScopeTerminal:
		q = q.Where("status IN ?", []model.TransferStatus{model.TransferCompleted, model.TransferCancelled}).
			Order("created_at DESC")
	default:
		return nil, apperr.Validation("unknown status filter")
	}

	var transfers []model.Transfer
	if err := q.Find(&transfers).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return transfers, nil
}

// CreateTransferForPallet atomically claims the pallet and writes the
// transfer record. The conditional claim replaces a read-check-write
// sequence, so a concurrent creation for the same pallet fails with a
// conflict instead of producing two in-progress transfers. A colliding
// transfer token rolls the claim back and surfaces ErrDuplicateTransferID.
func (s *gormStore) CreateTransferForPallet(ctx context.Context, transfer *model.Transfer) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := claimPallet(tx, transfer.PalletNumber, transfer.ID); err != nil {
			return err
		}
		if err := tx.Create(transfer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &apperr.Error{
					Kind:    apperr.KindConflict,
					Message: "transfer id already exists",
					Err:     ErrDuplicateTransferID,
				}
			}
			return apperr.Internal(err)
		}
		return nil
	})
}

// CompleteTransfer moves an in-progress transfer to its completed state
// and settles the pallet at the resolved destination. The transfer-side
// update is conditional on the in-progress status so terminal fields are
// written exactly once. A missing pallet is skipped silently (orphaned
// transfer); the transfer update still succeeds.
func (s *gormStore) CompleteTransfer(ctx context.Context, id, destination string, endedAt model.Date) (*model.Transfer, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transfer, err := finishTransfer(tx, id, model.TransferCompleted, endedAt, &destination)
		if err != nil {
			return err
		}
		return settleArrival(tx, transfer, destination)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTransfer(ctx, id)
}

// CancelTransfer moves an in-progress transfer to its cancelled state
// and releases the pallet. The pallet never left its origin, so the
// location, reservation and shelter state are untouched.
func (s *gormStore) CancelTransfer(ctx context.Context, id string, endedAt model.Date) (*model.Transfer, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transfer, err := finishTransfer(tx, id, model.TransferCancelled, endedAt, nil)
		if err != nil {
			return err
		}
		return releasePallet(tx, transfer.PalletNumber)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTransfer(ctx, id)
}

// finishTransfer applies the single allowed status transition. The
// update is guarded on status so a transfer that is already terminal is
// left unchanged and reported as a conflict.
func finishTransfer(tx *gorm.DB, id string, status model.TransferStatus, endedAt model.Date, destination *string) (*model.Transfer, error) {
	fields := map[string]any{
		"status":   status,
		"ended_at": endedAt,
	}
	if destination != nil {
		fields["destination_location"] = *destination
	}

	res := tx.Model(&model.Transfer{}).
		Where("id = ? AND status = ?", id, model.TransferInProgress).
		Updates(fields)
	if res.Error != nil {
		return nil, apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.Transfer{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if count == 0 {
			return nil, apperr.NotFound("transfer not found")
		}
		return nil, apperr.Conflict("transfer already completed or cancelled")
	}

	var transfer model.Transfer
	if err := tx.First(&transfer, "id = ?", id).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &transfer, nil
}

// settleArrival applies the pallet-side effects of a completed transfer:
// new location (with a history entry when it actually changed), cleared
// transfer flags, and the shelter/reserve-on-arrival side effects.
func settleArrival(tx *gorm.DB, transfer *model.Transfer, destination string) error {
	var pallet model.Pallet
	err := tx.First(&pallet, "number = ?", transfer.PalletNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Internal(err)
	}

	fields := map[string]any{
		"current_location":   destination,
		"is_in_transfer":     false,
		"active_transfer_id": nil,
	}
	if transfer.ShelterOnArrival {
		fields["is_sheltered"] = true
	}
	if transfer.ReserveOnArrival {
		fields["is_reserved"] = true
		fields["reservation_note"] = transfer.ReservationNote
	}

	if err := tx.Model(&model.Pallet{}).Where("number = ?", pallet.Number).Updates(fields).Error; err != nil {
		return apperr.Internal(err)
	}

	if destination != pallet.CurrentLocation {
		return appendLocationEntry(tx, pallet.Number, destination)
	}
	return nil
}
