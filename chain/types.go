package chain

import (
	"encoding/json"
	"time"
)

// Coin is a bank denomination and amount. Amount stays a string because LCD
// amounts exceed int64.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Pagination is the cosmos pagination response block.
type Pagination struct {
	NextKey string `json:"next_key"`
	Total   string `json:"total"`
}

// Account is the subset of a BaseAccount the tools report.
type Account struct {
	Type          string          `json:"@type"`
	Address       string          `json:"address"`
	PubKey        json.RawMessage `json:"pub_key,omitempty"`
	AccountNumber string          `json:"account_number"`
	Sequence      string          `json:"sequence"`
}

// BlockHeader carries the header fields of a block.
type BlockHeader struct {
	ChainID         string    `json:"chain_id"`
	Height          string    `json:"height"`
	Time            time.Time `json:"time"`
	ProposerAddress string    `json:"proposer_address"`
}

// Block is a decoded tendermint block response.
type Block struct {
	BlockID struct {
		Hash string `json:"hash"`
	} `json:"block_id"`
	Block struct {
		Header BlockHeader `json:"header"`
		Data   struct {
			Txs []string `json:"txs"`
		} `json:"data"`
	} `json:"block"`
}

// Height returns the header height.
func (b *Block) Height() string { return b.Block.Header.Height }

// TxCount returns the number of transactions in the block.
func (b *Block) TxCount() int { return len(b.Block.Data.Txs) }

// TxResponse is the execution result of a transaction.
type TxResponse struct {
	Height    string `json:"height"`
	TxHash    string `json:"txhash"`
	Codespace string `json:"codespace"`
	Code      uint32 `json:"code"`
	RawLog    string `json:"raw_log"`
	GasWanted string `json:"gas_wanted"`
	GasUsed   string `json:"gas_used"`
	Timestamp string `json:"timestamp"`
}

// Transaction pairs the raw tx body with its response.
type Transaction struct {
	Tx         json.RawMessage `json:"tx"`
	TxResponse TxResponse      `json:"tx_response"`
}

// Succeeded reports whether the transaction executed with code 0.
func (t *Transaction) Succeeded() bool { return t.TxResponse.Code == 0 }

// ContractInfo describes a deployed compute contract.
type ContractInfo struct {
	ContractAddress string `json:"contract_address"`
	CodeID          string `json:"code_id"`
	Creator         string `json:"creator"`
	Label           string `json:"label"`
	Admin           string `json:"admin,omitempty"`
}

type balanceResponse struct {
	Balance Coin `json:"balance"`
}

type balancesResponse struct {
	Balances   []Coin     `json:"balances"`
	Pagination Pagination `json:"pagination"`
}

type accountResponse struct {
	Account Account `json:"account"`
}

type contractInfoResponse struct {
	ContractAddress string `json:"contract_address"`
	ContractInfo    struct {
		CodeID  string `json:"code_id"`
		Creator string `json:"creator"`
		Label   string `json:"label"`
		Admin   string `json:"admin"`
	} `json:"contract_info"`
}

type codeHashResponse struct {
	CodeHash string `json:"code_hash"`
}

type txKeyResponse struct {
	Key string `json:"key"`
}

type contractQueryResponse struct {
	Data string `json:"data"`
}
