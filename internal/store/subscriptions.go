package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
)

// UpsertSubscription creates or refreshes a push subscription and
// replaces the set of pallets it follows.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription, palletNumbers []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return err
		}

		var pallets []model.Pallet
		if len(palletNumbers) > 0 {
			if err := tx.Where("number IN ?", palletNumbers).Find(&pallets).Error; err != nil {
				return err
			}
		}
		return tx.Model(sub).Association("Pallets").Replace(&pallets)
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Pallets").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("subscription not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// SubscriptionsForPallet returns every subscription following the given
// pallet number.
func (s *gormStore) SubscriptionsForPallet(ctx context.Context, number string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_pallet_mapping spm ON spm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("spm.pallet_number = ?", number).
		Find(&subs).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return subs, nil
}
