package model

import (
	"fmt"
	"sync/atomic"
	"time"
)

// TransferStatus is the lifecycle state of a transfer. The only valid
// transition is InProgress to one of the two terminal states.
type TransferStatus string

const (
	TransferInProgress TransferStatus = "in-progress"
	TransferCompleted  TransferStatus = "completed"
	TransferCancelled  TransferStatus = "cancelled"
)

// Terminal reports whether the status allows no further transitions.
func (s TransferStatus) Terminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// Valid reports whether s is one of the known statuses.
func (s TransferStatus) Valid() bool {
	return s == TransferInProgress || s.Terminal()
}

// Transfer records one pallet's move from an origin to a destination.
// PalletNumber references a Pallet by natural key; the store enforces no
// foreign key for it.
type Transfer struct {
	ID                  string         `json:"id" gorm:"primaryKey;size:32"`
	PalletNumber        string         `json:"palletNumber" gorm:"index;not null"`
	OriginLocation      string         `json:"originLocation" gorm:"not null"`
	DestinationLocation string         `json:"destinationLocation" gorm:"not null"`
	CreatedAt           Date           `json:"createdAt" gorm:"not null"`
	EndedAt             *Date          `json:"endedAt"`
	ResponsibleParty    string         `json:"responsibleParty" gorm:"not null"`
	Status              TransferStatus `json:"status" gorm:"size:32;not null;index;default:in-progress"`
	ShelterOnArrival    bool           `json:"shelterOnArrival" gorm:"not null;default:false"`
	ReserveOnArrival    bool           `json:"reserveOnArrival" gorm:"not null;default:false"`
	ReservationNote     *string        `json:"reservationNote"`
}

var lastTransferMilli atomic.Int64

// NewTransferID returns a timestamp-derived transfer token of the form
// TR<unix-millis>. The millisecond value is forced strictly monotonic
// within the process so two creations in the same millisecond cannot
// collide locally; cross-process collisions are caught by the store's
// uniqueness constraint.
func NewTransferID() string {
	for {
		now := time.Now().UnixMilli()
		last := lastTransferMilli.Load()
		if now <= last {
			now = last + 1
		}
		if lastTransferMilli.CompareAndSwap(last, now) {
			return fmt.Sprintf("TR%d", now)
		}
	}
}
