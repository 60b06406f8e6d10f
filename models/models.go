package models

import (
	"time"

	"gorm.io/datatypes"
)

// WalletConnection records a wallet address a client has connected
type WalletConnection struct {
	Address    string `gorm:"primaryKey;type:varchar(64)"`
	ChainID    string `gorm:"type:varchar(32);not null"`
	WalletType string `gorm:"type:varchar(32)"` // keplr, leap, starshell, ...

	// Free-form client metadata
	Metadata datatypes.JSON `gorm:"type:jsonb"`

	ConnectedAt time.Time `gorm:"autoCreateTime"`
	LastSeenAt  time.Time `gorm:"index"`
}

// QueryLog is an audit entry for a contract query executed by a tool.
// Credentials are never stored; permits are referenced by digest.
type QueryLog struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	SessionID string `gorm:"type:varchar(36);index"`

	Tool      string `gorm:"type:varchar(64);not null"`
	Contract  string `gorm:"type:varchar(64);index"`
	QueryType string `gorm:"type:varchar(64)"`
	AuthType  string `gorm:"type:varchar(20)"` // none, viewing_key, permit

	PermitDigest string `gorm:"type:varchar(64)"` // SHA256 of the permit sign doc

	Success    bool   `gorm:"default:false;index"`
	Error      string `gorm:"type:text"`
	DurationMs int64

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName customizations for cleaner names
func (WalletConnection) TableName() string { return "wallet_connections" }
func (QueryLog) TableName() string         { return "query_logs" }
