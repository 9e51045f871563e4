package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
)

// GetPallet returns a pallet with its location history, oldest entry
// first.
func (s *gormStore) GetPallet(ctx context.Context, number string) (*model.Pallet, error) {
	var pallet model.Pallet
	err := s.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("location_entries.timestamp ASC, location_entries.id ASC")
		}).
		First(&pallet, "number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("pallet not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &pallet, nil
}

func (s *gormStore) ListPallets(ctx context.Context, filter PalletFilter) ([]model.Pallet, error) {
	q := s.db.WithContext(ctx).Model(&model.Pallet{})
	if filter.CurrentLocation != "" {
		q = q.Where("current_location = ?", filter.CurrentLocation)
	}
	if filter.IsReserved != nil {
		q = q.Where("is_reserved = ?", *filter.IsReserved)
	}
	if filter.IsSheltered != nil {
		q = q.Where("is_sheltered = ?", *filter.IsSheltered)
	}
	if filter.IsInTransfer != nil {
		q = q.Where("is_in_transfer = ?", *filter.IsInTransfer)
	}

	var pallets []model.Pallet
	if err := q.Order("number ASC").Find(&pallets).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return pallets, nil
}

// CreatePallet stores a new pallet. The initial location does not count
// as a location change, so no history entry is written here.
func (s *gormStore) CreatePallet(ctx context.Context, pallet *model.Pallet) error {
	err := s.db.WithContext(ctx).Create(pallet).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("a pallet with this number already exists")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// UpdatePallet applies a partial update and appends a location history
// entry exactly when the update changes CurrentLocation to a different
// value than previously stored.
func (s *gormStore) UpdatePallet(ctx context.Context, number string, upd PalletUpdate) (*model.Pallet, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pallet model.Pallet
		if err := tx.First(&pallet, "number = ?", number).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("pallet not found")
			}
			return apperr.Internal(err)
		}

		fields := make(map[string]any)
		if upd.CurrentLocation != nil {
			fields["current_location"] = *upd.CurrentLocation
		}
		if upd.IsReserved != nil {
			fields["is_reserved"] = *upd.IsReserved
		}
		if upd.ReservationNote != nil {
			fields["reservation_note"] = *upd.ReservationNote
		}
		if upd.IsSheltered != nil {
			fields["is_sheltered"] = *upd.IsSheltered
		}
		if upd.IsInTransfer != nil {
			fields["is_in_transfer"] = *upd.IsInTransfer
		}
		if upd.ActiveTransferID != nil {
			fields["active_transfer_id"] = *upd.ActiveTransferID
		}
		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&model.Pallet{}).Where("number = ?", number).Updates(fields).Error; err != nil {
			return apperr.Internal(err)
		}

		if upd.CurrentLocation != nil && *upd.CurrentLocation != pallet.CurrentLocation {
			if err := appendLocationEntry(tx, number, *upd.CurrentLocation); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPallet(ctx, number)
}

func (s *gormStore) DeletePallet(ctx context.Context, number string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Pallet{Number: number})
		if res.Error != nil {
			return apperr.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("pallet not found")
		}
		if err := tx.Where("pallet_number = ?", number).Delete(&model.LocationEntry{}).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
}

// claimPallet is the mutual-exclusion guard for transfer creation: a
// single conditional update flips is_in_transfer only when it is still
// false, so two concurrent creations cannot both claim the pallet.
func claimPallet(tx *gorm.DB, number, transferID string) error {
	res := tx.Model(&model.Pallet{}).
		Where("number = ? AND is_in_transfer = ?", number, false).
		Updates(map[string]any{
			"is_in_transfer":     true,
			"active_transfer_id": transferID,
		})
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.Pallet{}).Where("number = ?", number).Count(&count).Error; err != nil {
			return apperr.Internal(err)
		}
		if count == 0 {
			return apperr.NotFound("pallet not found")
		}
		return apperr.Conflict("pallet already in transfer")
	}
	return nil
}

// releasePallet clears the transfer flags. The pallet may legitimately
// be gone (orphaned transfer), in which case this is a no-op.
func releasePallet(tx *gorm.DB, number string) error {
	err := tx.Model(&model.Pallet{}).
		Where("number = ?", number).
		Updates(map[string]any{
			"is_in_transfer":     false,
			"active_transfer_id": nil,
		}).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func appendLocationEntry(tx *gorm.DB, number, location string) error {
	entry := model.LocationEntry{
		PalletNumber: number,
		Location:     location,
		Timestamp:    time.Now().UTC(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}
