package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(&WalletConnection{}, &QueryLog{})
	require.NoError(t, err)

	return db
}

func cleanupTestDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "wallet_connections", WalletConnection{}.TableName())
	assert.Equal(t, "query_logs", QueryLog{}.TableName())
}

func TestWalletConnectionModel(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	tests := []struct {
		name          string
		conn          WalletConnection
		expectedError bool
	}{
		{
			name: "minimal connection",
			conn: WalletConnection{
				Address: "secret1ap26qrlp8mcq2pg6r47w43l0y8zkqm8a450s03",
				ChainID: "secret-4",
			},
		},
		{
			name: "connection with metadata",
			conn: WalletConnection{
				Address:    "secret1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq",
				ChainID:    "pulsar-3",
				WalletType: "keplr",
				Metadata:   datatypes.JSON(`{"label": "main", "hardware": false}`),
				LastSeenAt: time.Now(),
			},
		},
		{
			name: "duplicate address",
			conn: WalletConnection{
				Address: "secret1ap26qrlp8mcq2pg6r47w43l0y8zkqm8a450s03",
				ChainID: "secret-4",
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.Create(&tt.conn).Error
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var got WalletConnection
			require.NoError(t, db.First(&got, "address = ?", tt.conn.Address).Error)
			assert.Equal(t, tt.conn.ChainID, got.ChainID)
			assert.False(t, got.ConnectedAt.IsZero())

			if tt.conn.Metadata != nil {
				var meta map[string]any
				require.NoError(t, json.Unmarshal(got.Metadata, &meta))
				assert.Equal(t, "main", meta["label"])
			}
		})
	}
}

func TestQueryLogModel(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	for i := 0; i < 3; i++ {
		entry := QueryLog{
			ID:         fmt.Sprintf("log-%d", i),
			SessionID:  "session-1",
			Tool:       "get_token_balance",
			Contract:   "secret1k0jntykt7e4g3y88ltc60czgjuqdy4c9e8fzek",
			QueryType:  "token_balance",
			AuthType:   "permit",
			Success:    i != 1,
			DurationMs: int64(10 * i),
		}
		require.NoError(t, db.Create(&entry).Error)
	}

	var failures []QueryLog
	require.NoError(t, db.Where("success = ?", false).Find(&failures).Error)
	require.Len(t, failures, 1)
	assert.Equal(t, "log-1", failures[0].ID)

	var count int64
	require.NoError(t, db.Model(&QueryLog{}).Where("session_id = ?", "session-1").Count(&count).Error)
	assert.EqualValues(t, 3, count)
}
