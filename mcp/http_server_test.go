package mcp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHTTPServer(t *testing.T, config Config) (*HTTPServer, *stubChain) {
	t.Helper()
	core, _, stub := newTestServer(t, config, "")
	server, err := NewHTTPServer(config, core)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return server, stub
}

func do(server *HTTPServer, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestNewHTTPServerValidation(t *testing.T) {
	_, err := NewHTTPServer(testConfig(), nil)
	assert.Error(t, err)

	config := testConfig()
	config.CORSOrigins = []string{"not a url"}
	core, _, _ := newTestServer(t, config, "")
	_, err = NewHTTPServer(config, core)
	assert.Error(t, err)
}

func TestHTTPHealth(t *testing.T) {
	server, stub := newTestHTTPServer(t, testConfig())

	w := do(server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "reachable", body["lcd"])
	assert.Equal(t, "disabled", body["database"])
	assert.Equal(t, Version, body["version"])

	stub.pingErr = &chain.HTTPError{StatusCode: 503, Status: "Service Unavailable"}
	w = do(server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "unreachable", body["lcd"])
}

func TestHTTPHealthWithDatabase(t *testing.T) {
	config := testConfig()
	config.DatabaseURL = ":memory:"
	server, _ := newTestHTTPServer(t, config)

	w := do(server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "connected", decodeBody(t, w)["database"])
}

func TestHTTPAuth(t *testing.T) {
	config := testConfig()
	config.APIKey = "test-key-123"
	server, _ := newTestHTTPServer(t, config)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"missing header", http.MethodGet, "/api/tools", "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "/api/tools", "Basic test-key-123", http.StatusUnauthorized},
		{"wrong key", http.MethodGet, "/api/tools", "Bearer nope", http.StatusUnauthorized},
		{"valid key", http.MethodGet, "/api/tools", "Bearer test-key-123", http.StatusOK},
		{"health is open", http.MethodGet, "/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := do(server, tt.method, tt.path, "", headers)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				errObj := decodeBody(t, w)["error"].(map[string]any)
				assert.EqualValues(t, http.StatusUnauthorized, errObj["code"])
			}
		})
	}
}

func TestHTTPRateLimitCountsRejectedAuth(t *testing.T) {
	config := testConfig()
	config.APIKey = "test-key-123"
	config.HTTPRate = 1
	config.HTTPBurst = 1
	server, _ := newTestHTTPServer(t, config)

	bad := map[string]string{"Authorization": "Bearer wrong-key"}
	assert.Equal(t, http.StatusUnauthorized, do(server, http.MethodGet, "/api/tools", "", bad).Code)
	w := do(server, http.MethodGet, "/api/tools", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusUnauthorized, do(server, http.MethodGet, "/api/tools", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(server, http.MethodGet, "/api/tools", "", nil).Code)
}

func TestHTTPRejectsOversizedBody(t *testing.T) {
	server, _ := newTestHTTPServer(t, testConfig())
	huge := `{"address":"` + strings.Repeat("a", maxMessageBytes) + `"}`

	for _, path := range []string{"/mcp", "/api/tools/get_balance"} {
		t.Run(path, func(t *testing.T) {
			w := do(server, http.MethodPost, path, huge, nil)
			assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
			assert.EqualValues(t, http.StatusRequestEntityTooLarge, decodeBody(t, w)["error"].(map[string]any)["code"])
		})
	}
}

func TestHTTPMCPEndpoint(t *testing.T) {
	server, _ := newTestHTTPServer(t, testConfig())

	w := do(server, http.MethodPost, "/mcp", rpc(1, "tools/list", nil), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["id"])
	assert.NotEmpty(t, body["result"].(map[string]any)["tools"])

	w = do(server, http.MethodPost, "/mcp", rpc(nil, "notifications/initialized", nil), nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(server, http.MethodPost, "/mcp", "{broken", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, ParseError, decodeBody(t, w)["error"].(map[string]any)["code"])
}

func TestHTTPToolRoutes(t *testing.T) {
	server, stub := newTestHTTPServer(t, testConfig())

	w := do(server, http.MethodGet, "/api/tools", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["tools"])

	tests := []struct {
		name     string
		tool     string
		body     string
		queryErr error
		want     int
		code     int
	}{
		{name: "ok", tool: "lookup_token", body: `{"token":"SSCRT"}`, want: http.StatusOK},
		{name: "unknown tool", tool: "nope", body: `{}`, want: http.StatusNotFound, code: MethodNotFound},
		{name: "schema failure", tool: "lookup_token", body: `{}`, want: http.StatusBadRequest, code: 10008},
		{name: "unknown token", tool: "lookup_token", body: `{"token":"DOGE"}`, want: http.StatusNotFound, code: 10004},
		{
			name:     "internal failure",
			tool:     "get_token_info",
			body:     `{"token":"SSCRT"}`,
			queryErr: errors.New("unexpected"),
			want:     http.StatusInternalServerError,
			code:     InternalError,
		},
		{
			name:     "chain failure",
			tool:     "get_token_info",
			body:     `{"token":"SSCRT"}`,
			queryErr: &chain.HTTPError{StatusCode: 504, Status: "Gateway Timeout"},
			want:     http.StatusBadGateway,
			code:     10005,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub.queryErr = tt.queryErr
			w := do(server, http.MethodPost, "/api/tools/"+tt.tool, tt.body, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.code != 0 {
				errObj := decodeBody(t, w)["error"].(map[string]any)
				assert.EqualValues(t, tt.code, errObj["code"])
			}
		})
	}
}

func TestHTTPCORSPreflight(t *testing.T) {
	config := testConfig()
	config.APIKey = "k"
	server, _ := newTestHTTPServer(t, config)

	w := do(server, http.MethodOptions, "/mcp", "", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPCORSRestrictedOrigins(t *testing.T) {
	config := testConfig()
	config.CORSOrigins = []string{"https://app.example.com"}
	server, _ := newTestHTTPServer(t, config)

	w := do(server, http.MethodGet, "/health", "", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(server, http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
