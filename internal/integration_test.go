package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SEB120195/gestion-palettes-backend/config"
	"github.com/SEB120195/gestion-palettes-backend/internal/api"
	"github.com/SEB120195/gestion-palettes-backend/internal/db"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
	"github.com/SEB120195/gestion-palettes-backend/internal/transfer"
)

// TestTransferLifecycle drives a pallet through a full transfer over the
// HTTP API and verifies the database state at each step.
func TestTransferLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 1. Setup an in-memory SQLite database for testing.
	testDB, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to the in-memory database: %v", err)
	}
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, db.Migrate(testDB))

	// 2. Create a mock configuration.
	mockConfig := &config.Config{}
	mockConfig.Server.RateLimitPerSec = 1000
	mockConfig.Server.RateLimitBurst = 1000
	mockConfig.Server.CacheTTLSeconds = 1
	mockConfig.Auth.JWTSecret = "integration-secret"
	mockConfig.Auth.TokenTTL = time.Hour

	// 3. Instantiate the store, engine and router.
	gormStore := store.NewGormStore(testDB)
	engine := transfer.NewEngine(gormStore)
	router := api.NewRouter(gormStore, engine, nil, nil, mockConfig)

	call := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var raw []byte
		if body != nil {
			raw, err = json.Marshal(body)
			require.NoError(t, err)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	type envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	decode := func(w *httptest.ResponseRecorder) envelope {
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return env
	}

	// 4. Register an operator and grab a token.
	var token string
	t.Run("Step 1: Register Operator", func(t *testing.T) {
		w := call(http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Alice", "email": "alice@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var user struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(decode(w).Data, &user))
		require.NotEmpty(t, user.Token)
		token = user.Token
	})

	t.Run("Step 2: Create Pallet", func(t *testing.T) {
		w := call(http.MethodPost, "/api/pallets", token, gin.H{
			"number": "PAL-1", "currentLocation": "Dock A",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var stored model.Pallet
		err := testDB.First(&stored, "number = ?", "PAL-1").Error
		require.NoError(t, err)
		assert.Equal(t, "Dock A", stored.CurrentLocation)
		assert.False(t, stored.IsInTransfer)

		// The initial location is not a location change.
		var historyCount int64
		testDB.Model(&model.LocationEntry{}).Where("pallet_number = ?", "PAL-1").Count(&historyCount)
		assert.Equal(t, int64(0), historyCount)
	})

	var transferID string
	t.Run("Step 3: Start Transfer", func(t *testing.T) {
		w := call(http.MethodPost, "/api/transfers", token, gin.H{
			"palletNumber":        "PAL-1",
			"originLocation":      "Dock A",
			"destinationLocation": "Warehouse B",
			"responsibleParty":    "Alice",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created model.Transfer
		require.NoError(t, json.Unmarshal(decode(w).Data, &created))
		transferID = created.ID

		var pallet model.Pallet
		require.NoError(t, testDB.First(&pallet, "number = ?", "PAL-1").Error)
		assert.True(t, pallet.IsInTransfer)
		require.NotNil(t, pallet.ActiveTransferID)
		assert.Equal(t, transferID, *pallet.ActiveTransferID)
	})

	t.Run("Step 4: Second Transfer Conflicts", func(t *testing.T) {
		w := call(http.MethodPost, "/api/transfers", token, gin.H{
			"palletNumber":        "PAL-1",
			"originLocation":      "Dock A",
			"destinationLocation": "Warehouse C",
			"responsibleParty":    "Bob",
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		// Still exactly one transfer on record.
		var count int64
		testDB.Model(&model.Transfer{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Step 5: Complete Transfer", func(t *testing.T) {
		w := call(http.MethodPut, "/api/transfers/"+transferID+"/complete", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stored model.Transfer
		require.NoError(t, testDB.First(&stored, "id = ?", transferID).Error)
		assert.Equal(t, model.TransferCompleted, stored.Status)
		assert.NotNil(t, stored.EndedAt)

		var pallet model.Pallet
		require.NoError(t, testDB.First(&pallet, "number = ?", "PAL-1").Error)
		assert.Equal(t, "Warehouse B", pallet.CurrentLocation)
		assert.False(t, pallet.IsInTransfer)
		assert.Nil(t, pallet.ActiveTransferID)

		var entries []model.LocationEntry
		require.NoError(t, testDB.Where("pallet_number = ?", "PAL-1").Find(&entries).Error)
		require.Len(t, entries, 1)
		assert.Equal(t, "Warehouse B", entries[0].Location)
	})

	t.Run("Step 6: Terminal Transfer Stays Terminal", func(t *testing.T) {
		w := call(http.MethodPut, "/api/transfers/"+transferID+"/cancel", token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		var stored model.Transfer
		require.NoError(t, testDB.First(&stored, "id = ?", transferID).Error)
		assert.Equal(t, model.TransferCompleted, stored.Status)
	})
}
