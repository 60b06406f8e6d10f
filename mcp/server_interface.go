package mcp

import (
	"context"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
	"github.com/MrGarbonzo/secret-network-mcp/wallet"
)

// ServerInterface is an alias to types.ServerInterface
type ServerInterface = types.ServerInterface

// Ensure StdioServer implements ServerInterface
var _ types.ServerInterface = (*StdioServer)(nil)

// Chain returns the LCD client.
func (s *StdioServer) Chain() chain.Querier { return s.chain }

// Tokens returns the token registry.
func (s *StdioServer) Tokens() *registry.Registry { return s.tokens }

// Wallets returns the wallet connection store.
func (s *StdioServer) Wallets() wallet.Store { return s.wallets }

// GetSessionID returns the identifier of this server session.
func (s *StdioServer) GetSessionID() string { return s.sessionID }

// ChainID returns the configured chain id.
func (s *StdioServer) ChainID() string { return s.config.ChainID }

// ReportProgress emits a progress notification if the context carries a token.
func (s *StdioServer) ReportProgress(ctx context.Context, progress, total float64, message string) {
	if token, ok := progressTokenFromContext(ctx); ok {
		s.sendProgressNotification(token, progress, total, message)
	}
}
