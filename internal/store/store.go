package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SEB120195/gestion-palettes-backend/internal/model"
)

// ErrDuplicateTransferID signals that a generated transfer token already
// exists. Callers may retry with a fresh token.
var ErrDuplicateTransferID = errors.New("duplicate transfer id")

// Store defines the interface for all database operations. Pallets are
// keyed by number, transfers by id; neither collection references the
// other at the schema level.
type Store interface {
	// Pallets
	GetPallet(ctx context.Context, number string) (*model.Pallet, error)
	ListPallets(ctx context.Context, filter PalletFilter) ([]model.Pallet, error)
	CreatePallet(ctx context.Context, pallet *model.Pallet) error
	UpdatePallet(ctx context.Context, number string, upd PalletUpdate) (*model.Pallet, error)
	DeletePallet(ctx context.Context, number string) error

	// Transfers
	GetTransfer(ctx context.Context, id string) (*model.Transfer, error)
	ListTransfers(ctx context.Context, filter TransferFilter) ([]model.Transfer, error)
	CreateTransferForPallet(ctx context.Context, transfer *model.Transfer) error
	CompleteTransfer(ctx context.Context, id, destination string, endedAt model.Date) (*model.Transfer, error)
	CancelTransfer(ctx context.Context, id string, endedAt model.Date) (*model.Transfer, error)

	// Sync
	SyncPallets(ctx context.Context, pallets []model.Pallet) error
	SyncTransfers(ctx context.Context, transfers []model.Transfer) error

	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Push subscriptions
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription, palletNumbers []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForPallet(ctx context.Context, number string) ([]model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}
