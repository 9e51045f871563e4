package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/SEB120195/gestion-palettes-backend/internal/model"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestStore(t *testing.T) (store.Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return store.NewGormStore(gormDB), mock
}

func TestWorkerPool_Dispatch(t *testing.T) {
	s, _ := newTestStore(t)
	wp := NewWorkerPool(1, s, &webpush.Options{})

	wp.Dispatch("PAL-1")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "PAL-1", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DisabledWithoutOptions(t *testing.T) {
	s, mock := newTestStore(t)
	wp := NewWorkerPool(1, s, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	// No expectations are registered, so any database access would fail
	// the assertion below.
	wp.Dispatch("PAL-1")
	time.Sleep(100 * time.Millisecond)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	s, mock := newTestStore(t)
	wp := NewWorkerPool(1, s, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends notification for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		subscription := model.PushSubscription{
			Endpoint: "https://example.com/push",
			P256DH:   "test_p256dh",
			Auth:     "test_auth",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "Pallet PAL-1 has arrived at Warehouse B", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN subscription_pallet_mapping spm.*WHERE spm\.pallet_number = \$1`).
			WithArgs("PAL-1").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT \* FROM "pallets" WHERE number = \$1 ORDER BY "pallets"\."number" LIMIT \$[0-9]+`).
			WithArgs("PAL-1", 1).
			WillReturnRows(sqlmock.NewRows([]string{"number", "current_location"}).
				AddRow("PAL-1", "Warehouse B"))
		mock.ExpectQuery(`SELECT \* FROM "location_entries" WHERE "location_entries"\."pallet_number" = \$1`).
			WithArgs("PAL-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "pallet_number", "location", "timestamp"}))

		wp.Dispatch("PAL-1")
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/expired",
			P256DH:   "test_p256dh_expired",
			Auth:     "test_auth_expired",
		}

		// The mock sender answers 410 Gone so the subscription is removed.
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN subscription_pallet_mapping spm.*WHERE spm\.pallet_number = \$1`).
			WithArgs("PAL-2").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT \* FROM "pallets" WHERE number = \$1 ORDER BY "pallets"\."number" LIMIT \$[0-9]+`).
			WithArgs("PAL-2", 1).
			WillReturnRows(sqlmock.NewRows([]string{"number", "current_location"}).
				AddRow("PAL-2", "Dock A"))
		mock.ExpectQuery(`SELECT \* FROM "location_entries" WHERE "location_entries"\."pallet_number" = \$1`).
			WithArgs("PAL-2").
			WillReturnRows(sqlmock.NewRows([]string{"id", "pallet_number", "location", "timestamp"}))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"\."endpoint" = \$1`).
			WithArgs(subscription.Endpoint).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch("PAL-2")

		// A short sleep to allow the worker to process the job
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to the pallet number when the lookup fails", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		subscription := model.PushSubscription{
			Endpoint: "https://example.com/fallback",
			P256DH:   "test_p256dh_fallback",
			Auth:     "test_auth_fallback",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "Pallet PAL-3 has arrived", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN subscription_pallet_mapping spm.*WHERE spm\.pallet_number = \$1`).
			WithArgs("PAL-3").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT \* FROM "pallets" WHERE number = \$1 ORDER BY "pallets"\."number" LIMIT \$[0-9]+`).
			WithArgs("PAL-3", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		wp.Dispatch("PAL-3")
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
