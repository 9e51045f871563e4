package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// A subscription follows individual pallets and is notified when one of
// them arrives at its destination.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Pallets []*Pallet `gorm:"many2many:subscription_pallet_mapping;"`
}
