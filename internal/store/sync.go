package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
)

// SyncPallets upserts pallet snapshots by number, last write wins. Each
// record is applied independently and in order; a failure partway leaves
// the earlier upserts committed, which is the documented contract of the
// sync gateway.
func (s *gormStore) SyncPallets(ctx context.Context, pallets []model.Pallet) error {
	for i := range pallets {
		if pallets[i].Number == "" {
			return apperr.Validation("pallet snapshot without a number")
		}
		if err := s.upsertPallet(ctx, &pallets[i]); err != nil {
			return apperr.Internal(fmt.Errorf("upserting pallet %s: %w", pallets[i].Number, err))
		}
	}
	return nil
}

// upsertPallet overwrites the whole pallet row. When the snapshot
// carries a location history it replaces the stored history wholesale,
// since the snapshot is the client's full view of the record.
func (s *gormStore) upsertPallet(ctx context.Context, pallet *model.Pallet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history := pallet.History
		err := tx.Omit("History").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "number"}},
			UpdateAll: true,
		}).Create(pallet).Error
		if err != nil {
			return err
		}

		if history == nil {
			return nil
		}
		if err := tx.Where("pallet_number = ?", pallet.Number).Delete(&model.LocationEntry{}).Error; err != nil {
			return err
		}
		for i := range history {
			history[i].ID = 0
			history[i].PalletNumber = pallet.Number
			if err := tx.Create(&history[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SyncTransfers upserts transfer snapshots by id, last write wins, with
// the same per-record independence as SyncPallets.
func (s *gormStore) SyncTransfers(ctx context.Context, transfers []model.Transfer) error {
	for i := range transfers {
		if transfers[i].ID == "" {
			return apperr.Validation("transfer snapshot without an id")
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&transfers[i]).Error
		if err != nil {
			return apperr.Internal(fmt.Errorf("upserting transfer %s: %w", transfers[i].ID, err))
		}
	}
	return nil
}
