package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MrGarbonzo/secret-network-mcp/models"
)

// GormStore persists connections in the wallet_connections table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ Store = (*GormStore)(nil)

// NewGormStore wraps a migrated database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Connect(ctx context.Context, c Connection) (Connection, error) {
	c, err := prepare(c, s.now())
	if err != nil {
		return Connection{}, err
	}
	row, err := toModel(c)
	if err != nil {
		return Connection{}, err
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"chain_id", "wallet_type", "metadata", "connected_at", "last_seen_at"}),
	}).Create(&row).Error
	if err != nil {
		return Connection{}, fmt.Errorf("failed to save wallet connection: %w", err)
	}
	return c.clone(), nil
}

func (s *GormStore) Disconnect(ctx context.Context, address string) error {
	res := s.db.WithContext(ctx).Delete(&models.WalletConnection{}, "address = ?", address)
	if res.Error != nil {
		return fmt.Errorf("failed to delete wallet connection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotConnected, address)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, address string) (Connection, error) {
	var row models.WalletConnection
	err := s.db.WithContext(ctx).First(&row, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Connection{}, fmt.Errorf("%w: %s", ErrNotConnected, address)
	}
	if err != nil {
		return Connection{}, fmt.Errorf("failed to load wallet connection: %w", err)
	}
	return fromModel(row)
}

func (s *GormStore) List(ctx context.Context) ([]Connection, error) {
	var rows []models.WalletConnection
	if err := s.db.WithContext(ctx).Order("address").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallet connections: %w", err)
	}
	out := make([]Connection, 0, len(rows))
	for _, row := range rows {
		c, err := fromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *GormStore) Touch(ctx context.Context, address string) error {
	res := s.db.WithContext(ctx).Model(&models.WalletConnection{}).
		Where("address = ?", address).
		Update("last_seen_at", s.now())
	if res.Error != nil {
		return fmt.Errorf("failed to touch wallet connection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotConnected, address)
	}
	return nil
}

func toModel(c Connection) (models.WalletConnection, error) {
	row := models.WalletConnection{
		Address:     c.Address,
		ChainID:     c.ChainID,
		WalletType:  c.WalletType,
		ConnectedAt: c.ConnectedAt,
		LastSeenAt:  c.LastSeenAt,
	}
	if c.Metadata != nil {
		raw, err := json.Marshal(c.Metadata)
		if err != nil {
			return row, fmt.Errorf("failed to encode wallet metadata: %w", err)
		}
		row.Metadata = datatypes.JSON(raw)
	}
	return row, nil
}

func fromModel(row models.WalletConnection) (Connection, error) {
	c := Connection{
		Address:     row.Address,
		ChainID:     row.ChainID,
		WalletType:  row.WalletType,
		ConnectedAt: row.ConnectedAt,
		LastSeenAt:  row.LastSeenAt,
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &c.Metadata); err != nil {
			return c, fmt.Errorf("failed to decode wallet metadata: %w", err)
		}
	}
	return c, nil
}
