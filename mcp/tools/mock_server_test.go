package tools

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
	"github.com/MrGarbonzo/secret-network-mcp/wallet"
)

// contractCall records one QueryContract invocation.
type contractCall struct {
	Address  string
	CodeHash string
	Query    json.RawMessage
}

// fakeChain implements chain.Querier with canned answers.
type fakeChain struct {
	mu sync.Mutex

	balances     []chain.Coin
	account      *chain.Account
	block        *chain.Block
	tx           *chain.Transaction
	contractInfo *chain.ContractInfo
	codeHash     string
	err          error

	// respond produces the contract answer for a query; nil echoes {}.
	respond func(query map[string]any) (json.RawMessage, error)
	calls   []contractCall
}

var _ chain.Querier = (*fakeChain)(nil)

func (f *fakeChain) GetBalance(_ context.Context, _, denom string) (*chain.Coin, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.balances {
		if c.Denom == denom {
			return &c, nil
		}
	}
	return &chain.Coin{Denom: denom, Amount: "0"}, nil
}

func (f *fakeChain) GetAllBalances(context.Context, string) ([]chain.Coin, error) {
	return f.balances, f.err
}

func (f *fakeChain) GetAccount(context.Context, string) (*chain.Account, error) {
	return f.account, f.err
}

func (f *fakeChain) GetLatestBlock(context.Context) (*chain.Block, error) {
	return f.block, f.err
}

func (f *fakeChain) GetBlock(context.Context, int64) (*chain.Block, error) {
	return f.block, f.err
}

func (f *fakeChain) GetTransaction(context.Context, string) (*chain.Transaction, error) {
	return f.tx, f.err
}

func (f *fakeChain) GetContractInfo(context.Context, string) (*chain.ContractInfo, error) {
	return f.contractInfo, f.err
}

func (f *fakeChain) GetCodeHash(context.Context, string) (string, error) {
	return f.codeHash, f.err
}

func (f *fakeChain) QueryContract(_ context.Context, address, codeHash string, q any) (json.RawMessage, error) {
	encoded, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, contractCall{Address: address, CodeHash: codeHash, Query: encoded})
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.respond == nil {
		return json.RawMessage(`{}`), nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, err
	}
	return f.respond(decoded)
}

func (f *fakeChain) Ping(context.Context) error { return f.err }

func (f *fakeChain) lastCall() contractCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return contractCall{}
	}
	return f.calls[len(f.calls)-1]
}

// mockServer implements types.ServerInterface for testing
type mockServer struct {
	chain     *fakeChain
	tokens    *registry.Registry
	wallets   wallet.Store
	sessionID string
	chainID   string

	mu       sync.Mutex
	progress []string
}

var _ types.ServerInterface = (*mockServer)(nil)

func newMockServer() *mockServer {
	return &mockServer{
		chain:     &fakeChain{},
		tokens:    registry.Default(),
		wallets:   wallet.NewMemoryStore(),
		sessionID: "mock-session",
		chainID:   "secret-4",
	}
}

func (m *mockServer) Chain() chain.Querier       { return m.chain }
func (m *mockServer) Tokens() *registry.Registry { return m.tokens }
func (m *mockServer) Wallets() wallet.Store      { return m.wallets }
func (m *mockServer) GetSessionID() string       { return m.sessionID }
func (m *mockServer) ChainID() string            { return m.chainID }

func (m *mockServer) ReportProgress(_ context.Context, _, _ float64, message string) {
	m.mu.Lock()
	m.progress = append(m.progress, message)
	m.mu.Unlock()
}
