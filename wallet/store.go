// Package wallet tracks which wallet addresses a client has connected.
package wallet

import (
	"context"
	"errors"
	"maps"
	"time"
)

// ErrNotConnected is returned for addresses with no connection.
var ErrNotConnected = errors.New("wallet not connected")

// Connection is a connected wallet and its client metadata.
type Connection struct {
	Address     string         `json:"address"`
	ChainID     string         `json:"chain_id"`
	WalletType  string         `json:"wallet_type,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ConnectedAt time.Time      `json:"connected_at"`
	LastSeenAt  time.Time      `json:"last_seen_at"`
}

func (c Connection) clone() Connection {
	if c.Metadata != nil {
		c.Metadata = maps.Clone(c.Metadata)
	}
	return c
}

// Store persists wallet connections. Implementations are safe for concurrent
// use.
type Store interface {
	// Connect creates or replaces the connection for c.Address.
	Connect(ctx context.Context, c Connection) (Connection, error)
	Disconnect(ctx context.Context, address string) error
	Get(ctx context.Context, address string) (Connection, error)
	// List returns connections ordered by address.
	List(ctx context.Context) ([]Connection, error)
	// Touch updates LastSeenAt.
	Touch(ctx context.Context, address string) error
}

func prepare(c Connection, now time.Time) (Connection, error) {
	if err := ValidateAddress(c.Address); err != nil {
		return Connection{}, err
	}
	if c.ChainID == "" {
		return Connection{}, errors.New("chain id is required")
	}
	c = c.clone()
	c.ConnectedAt = now
	c.LastSeenAt = now
	return c, nil
}
