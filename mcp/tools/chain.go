package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

// NewGetBalanceTool reports native bank balances for an address.
func NewGetBalanceTool(server types.ServerInterface) types.Tool {
	return NewTool("get_balance").
		WithDescription("Get native bank balances for a Secret Network address. Pass denom to fetch a single denomination.").
		WithInputSchema(object(map[string]any{
			"address": CommonSchemas.Address,
			"denom": map[string]any{
				"type":        "string",
				"description": "Denomination, e.g. uscrt",
			},
		}, "address")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Address string `json:"address"`
				Denom   string `json:"denom"`
			}](params)
			if err != nil {
				return nil, err
			}
			if err := validateAddress("address", args.Address); err != nil {
				return nil, err
			}

			var coins []chain.Coin
			if args.Denom != "" {
				coin, err := server.Chain().GetBalance(ctx, args.Address, args.Denom)
				if err != nil {
					return nil, err
				}
				coins = []chain.Coin{*coin}
			} else {
				coins, err = server.Chain().GetAllBalances(ctx, args.Address)
				if err != nil {
					return nil, err
				}
			}

			var text strings.Builder
			fmt.Fprintf(&text, "Balances for %s:", args.Address)
			if len(coins) == 0 {
				text.WriteString(" none")
			}
			for _, coin := range coins {
				fmt.Fprintf(&text, "\n- %s", formatCoin(coin.Amount, coin.Denom))
			}
			return types.TextResult(text.String(), map[string]any{
				"address":  args.Address,
				"balances": coins,
			}), nil
		}).
		Build()
}

// NewGetAccountTool reports auth account details.
func NewGetAccountTool(server types.ServerInterface) types.Tool {
	return NewTool("get_account").
		WithDescription("Get account number, sequence and public key for an address").
		WithInputSchema(object(map[string]any{"address": CommonSchemas.Address}, "address")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Address string `json:"address"`
			}](params)
			if err != nil {
				return nil, err
			}
			if err := validateAddress("address", args.Address); err != nil {
				return nil, err
			}
			account, err := server.Chain().GetAccount(ctx, args.Address)
			if err != nil {
				return nil, err
			}
			summary := fmt.Sprintf("Account %s: number %s, sequence %s", account.Address, account.AccountNumber, account.Sequence)
			return jsonResult(summary, account)
		}).
		Build()
}

func blockResult(block *chain.Block) (any, error) {
	header := block.Block.Header
	summary := fmt.Sprintf("Block %s on %s at %s with %d transactions (hash %s)",
		header.Height, header.ChainID, header.Time.UTC().Format("2006-01-02T15:04:05Z"), block.TxCount(), block.BlockID.Hash)
	return types.TextResult(summary, map[string]any{
		"height":   header.Height,
		"chain_id": header.ChainID,
		"time":     header.Time,
		"hash":     block.BlockID.Hash,
		"proposer": header.ProposerAddress,
		"tx_count": block.TxCount(),
	}), nil
}

// NewGetLatestBlockTool reports the chain head.
func NewGetLatestBlockTool(server types.ServerInterface) types.Tool {
	return NewTool("get_latest_block").
		WithDescription("Get the latest block height, time and hash").
		WithInputSchema(object(map[string]any{})).
		WithHandler(func(ctx context.Context, _ json.RawMessage) (any, error) {
			block, err := server.Chain().GetLatestBlock(ctx)
			if err != nil {
				return nil, err
			}
			return blockResult(block)
		}).
		Build()
}

// NewGetBlockTool reports a block by height.
func NewGetBlockTool(server types.ServerInterface) types.Tool {
	return NewTool("get_block").
		WithDescription("Get a block by height").
		WithInputSchema(object(map[string]any{
			"height": map[string]any{"type": "integer", "minimum": 1},
		}, "height")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Height int64 `json:"height"`
			}](params)
			if err != nil {
				return nil, err
			}
			block, err := server.Chain().GetBlock(ctx, args.Height)
			if err != nil {
				return nil, err
			}
			return blockResult(block)
		}).
		Build()
}

// NewGetTransactionTool reports a transaction by hash.
func NewGetTransactionTool(server types.ServerInterface) types.Tool {
	return NewTool("get_transaction").
		WithDescription("Get a transaction and its execution result by hash").
		WithInputSchema(object(map[string]any{
			"hash": map[string]any{
				"type":    "string",
				"pattern": "^[0-9A-Fa-f]{64}$",
			},
		}, "hash")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Hash string `json:"hash"`
			}](params)
			if err != nil {
				return nil, err
			}
			tx, err := server.Chain().GetTransaction(ctx, strings.ToUpper(args.Hash))
			if err != nil {
				return nil, err
			}
			status := "succeeded"
			if !tx.Succeeded() {
				status = fmt.Sprintf("failed with code %d: %s", tx.TxResponse.Code, tx.TxResponse.RawLog)
			}
			summary := fmt.Sprintf("Transaction %s at height %s %s (gas %s/%s)",
				tx.TxResponse.TxHash, tx.TxResponse.Height, status, tx.TxResponse.GasUsed, tx.TxResponse.GasWanted)
			return jsonResult(summary, tx)
		}).
		Build()
}

// NewGetContractInfoTool reports contract metadata.
func NewGetContractInfoTool(server types.ServerInterface) types.Tool {
	return NewTool("get_contract_info").
		WithDescription("Get code id, creator, label and admin of a contract").
		WithInputSchema(object(map[string]any{"contract_address": CommonSchemas.Address}, "contract_address")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				ContractAddress string `json:"contract_address"`
			}](params)
			if err != nil {
				return nil, err
			}
			if err := validateAddress("contract_address", args.ContractAddress); err != nil {
				return nil, err
			}
			info, err := server.Chain().GetContractInfo(ctx, args.ContractAddress)
			if err != nil {
				return nil, err
			}
			summary := fmt.Sprintf("Contract %s (%s), code id %s", info.ContractAddress, info.Label, info.CodeID)
			return jsonResult(summary, info)
		}).
		Build()
}

// NewGetCodeHashTool reports the code hash of a contract.
func NewGetCodeHashTool(server types.ServerInterface) types.Tool {
	return NewTool("get_code_hash").
		WithDescription("Get the code hash of a contract, needed to encrypt queries to it").
		WithInputSchema(object(map[string]any{"contract_address": CommonSchemas.Address}, "contract_address")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				ContractAddress string `json:"contract_address"`
			}](params)
			if err != nil {
				return nil, err
			}
			if err := validateAddress("contract_address", args.ContractAddress); err != nil {
				return nil, err
			}
			hash, err := server.Chain().GetCodeHash(ctx, args.ContractAddress)
			if err != nil {
				return nil, err
			}
			return types.TextResult(fmt.Sprintf("Code hash of %s: %s", args.ContractAddress, hash), map[string]any{
				"contract_address": args.ContractAddress,
				"code_hash":        hash,
			}), nil
		}).
		Build()
}
