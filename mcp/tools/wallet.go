package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/wallet"
)

// NewConnectWalletTool records a wallet the client has connected.
func NewConnectWalletTool(server types.ServerInterface) types.Tool {
	return NewTool("connect_wallet").
		WithDescription("Record a connected wallet address so later calls can refer to it. Reconnecting replaces the previous entry.").
		WithInputSchema(object(map[string]any{
			"address":     CommonSchemas.Address,
			"chain_id":    map[string]any{"type": "string", "minLength": 1},
			"wallet_type": map[string]any{"type": "string", "description": "e.g. keplr, leap, fina"},
			"metadata":    map[string]any{"type": "object"},
		}, "address")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Address    string         `json:"address"`
				ChainID    string         `json:"chain_id"`
				WalletType string         `json:"wallet_type"`
				Metadata   map[string]any `json:"metadata"`
			}](params)
			if err != nil {
				return nil, err
			}
			if err := validateAddress("address", args.Address); err != nil {
				return nil, err
			}
			if args.ChainID == "" {
				args.ChainID = server.ChainID()
			}

			conn, err := server.Wallets().Connect(ctx, wallet.Connection{
				Address:    args.Address,
				ChainID:    args.ChainID,
				WalletType: args.WalletType,
				Metadata:   args.Metadata,
			})
			if err != nil {
				return nil, types.WrapError(types.StorageError, "Failed to connect wallet", err)
			}
			return types.TextResult(fmt.Sprintf("Connected %s on %s", conn.Address, conn.ChainID), conn), nil
		}).
		Build()
}

// NewDisconnectWalletTool forgets a connected wallet.
func NewDisconnectWalletTool(server types.ServerInterface) types.Tool {
	return NewTool("disconnect_wallet").
		WithDescription("Forget a connected wallet address").
		WithInputSchema(object(map[string]any{"address": CommonSchemas.Address}, "address")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Address string `json:"address"`
			}](params)
			if err != nil {
				return nil, err
			}
			if err := server.Wallets().Disconnect(ctx, args.Address); err != nil {
				return nil, err
			}
			return types.TextResult("Disconnected "+args.Address, map[string]any{
				"address":      args.Address,
				"disconnected": true,
			}), nil
		}).
		Build()
}

// NewWalletStatusTool reports one connection, or all of them when no address
// is given.
func NewWalletStatusTool(server types.ServerInterface) types.Tool {
	return NewTool("wallet_status").
		WithDescription("Show a connected wallet, or every connected wallet when address is omitted").
		WithInputSchema(object(map[string]any{"address": CommonSchemas.Address})).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Address string `json:"address"`
			}](params)
			if err != nil {
				return nil, err
			}

			if args.Address != "" {
				if err := server.Wallets().Touch(ctx, args.Address); err != nil {
					return nil, err
				}
				conn, err := server.Wallets().Get(ctx, args.Address)
				if err != nil {
					return nil, err
				}
				return types.TextResult(describeConnection(conn), conn), nil
			}

			conns, err := server.Wallets().List(ctx)
			if err != nil {
				return nil, types.WrapError(types.StorageError, "Failed to list wallets", err)
			}
			var text strings.Builder
			fmt.Fprintf(&text, "%d connected wallet(s)", len(conns))
			for _, conn := range conns {
				text.WriteString("\n- ")
				text.WriteString(describeConnection(conn))
			}
			return types.TextResult(text.String(), map[string]any{"wallets": conns}), nil
		}).
		Build()
}

func describeConnection(conn wallet.Connection) string {
	kind := conn.WalletType
	if kind == "" {
		kind = "unknown wallet"
	}
	return fmt.Sprintf("%s on %s (%s), connected %s, last seen %s",
		conn.Address, conn.ChainID, kind,
		conn.ConnectedAt.UTC().Format("2006-01-02T15:04:05Z"),
		conn.LastSeenAt.UTC().Format("2006-01-02T15:04:05Z"))
}
