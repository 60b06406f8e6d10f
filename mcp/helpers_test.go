package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
)

const (
	testAddress = "secret1ap26qrlp8mcq2pg6r47w43l0y8zkqm8a450s03"
	sscrtAddr   = "secret1k0jntykt7e4g3y88ltc60czgjuqdy4c9e8fzek"
)

// stubChain answers the few chain calls the transport tests make. Calls to
// anything else panic through the nil embedded interface.
type stubChain struct {
	chain.Querier

	mu       sync.Mutex
	pingErr  error
	queryErr error
	answer   json.RawMessage
	queries  []json.RawMessage
}

func (s *stubChain) Ping(context.Context) error { return s.pingErr }

func (s *stubChain) GetAllBalances(context.Context, string) ([]chain.Coin, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return []chain.Coin{{Denom: "uscrt", Amount: "2000000"}}, nil
}

func (s *stubChain) QueryContract(_ context.Context, _, _ string, q any) (json.RawMessage, error) {
	encoded, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.queries = append(s.queries, encoded)
	s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.answer == nil {
		return json.RawMessage(`{}`), nil
	}
	return s.answer, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HTTPRate = 0
	return cfg
}

// newTestServer builds a server reading input and writing to the returned
// buffer.
func newTestServer(t *testing.T, config Config, input string) (*StdioServer, *bytes.Buffer, *stubChain) {
	t.Helper()
	var out bytes.Buffer
	stub := &stubChain{}
	server, err := NewStdioServer(config, WithChain(stub), WithIO(strings.NewReader(input), &out))
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return server, &out, stub
}

// frames decodes every newline-delimited message written by the server.
func frames(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var result []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var frame map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &frame), line)
		result = append(result, frame)
	}
	return result
}

func rpc(id any, method string, params any) string {
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if id != nil {
		msg["id"] = id
	}
	if params != nil {
		msg["params"] = params
	}
	data, _ := json.Marshal(msg)
	return string(data)
}

func request(t *testing.T, id any, method string, params any) Request {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		raw = data
	}
	return Request{JSONRPC: JSONRPCVersion, ID: id, Method: method, Params: raw}
}

func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}
