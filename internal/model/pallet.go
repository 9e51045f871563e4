package model

import "time"

// Pallet represents a tracked physical pallet. The number is the natural
// key and is immutable after creation.
type Pallet struct {
	Number           string  `json:"number" gorm:"primaryKey;size:64"`
	CurrentLocation  string  `json:"currentLocation" gorm:"not null"`
	IsReserved       bool    `json:"isReserved" gorm:"not null;default:false"`
	ReservationNote  *string `json:"reservationNote"`
	IsSheltered      bool    `json:"isSheltered" gorm:"not null;default:false"`
	IsInTransfer     bool    `json:"isInTransfer" gorm:"not null;default:false"`
	ActiveTransferID *string `json:"activeTransferId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Associations
	History []LocationEntry `json:"locationHistory" gorm:"foreignKey:PalletNumber;references:Number;constraint:OnDelete:CASCADE"`
}

// IsAvailable reports whether the pallet can be reserved or transferred.
func (p *Pallet) IsAvailable() bool {
	return !p.IsReserved && !p.IsInTransfer
}

// LocationEntry is one append-only record of a pallet's location change.
// Entries are written by the store whenever a save observes a different
// CurrentLocation than previously stored, never by a hidden hook.
type LocationEntry struct {
	ID           int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	PalletNumber string    `json:"-" gorm:"index;not null"`
	Location     string    `json:"location" gorm:"not null"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null"`
}
