package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only protocol version accepted on the wire.
const JSONRPCVersion = "2.0"

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

// Meta is the optional `_meta` envelope carried by params. MCP uses it for
// `progressToken`; other keys are passed through untouched.
type Meta map[string]any

// ProgressToken returns `progressToken` when it is a non-empty string or a
// number, the two forms clients send.
func (m Meta) ProgressToken() (any, bool) {
	if m == nil {
		return nil, false
	}
	switch token := m["progressToken"].(type) {
	case string:
		return token, token != ""
	case float64, json.Number:
		return token, true
	}
	return nil, false
}

// RequestMessage is a JSON-RPC 2.0 request that expects a response.
type RequestMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NotificationMessage is a JSON-RPC 2.0 notification. It has no ID and gets
// no response.
type NotificationMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// ResponseMessage is a JSON-RPC 2.0 response.
type ResponseMessage struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      any          `json:"id"`
	Result  any          `json:"result,omitempty"`
	Error   *ErrorObject `json:"error,omitempty"`
}

// ErrorObject is a JSON-RPC 2.0 error payload.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// incomingMessage is decoded first so that requests and notifications can be
// told apart by the presence of "id", including "id": null.
type incomingMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (m incomingMessage) isNotification() bool {
	return len(m.ID) == 0
}

func (m incomingMessage) request() RequestMessage {
	var id any
	if len(m.ID) > 0 {
		decoder := json.NewDecoder(bytes.NewReader(m.ID))
		decoder.UseNumber()
		_ = decoder.Decode(&id)
	}
	return RequestMessage{JSONRPC: m.JSONRPC, ID: id, Method: m.Method, Params: m.Params}
}

func (m incomingMessage) notification() NotificationMessage {
	return NotificationMessage{JSONRPC: m.JSONRPC, Method: m.Method, Params: m.Params}
}

// SuccessResponse builds a success response with the provided result payload.
func SuccessResponse(id, result any) ResponseMessage {
	return ResponseMessage{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// ErrorResponse builds a response containing the supplied error object.
func ErrorResponse(id any, code int, message string, data ...any) ResponseMessage {
	var extra any
	if len(data) > 0 {
		extra = data[0]
	}
	return ResponseMessage{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
			Data:    extra,
		},
	}
}

// ensureVersion validates that a decoded message has the expected jsonrpc value.
func ensureVersion(v string) error {
	if v == JSONRPCVersion {
		return nil
	}
	if v == "" {
		return fmt.Errorf("missing jsonrpc version")
	}
	return fmt.Errorf("unsupported jsonrpc version: %s", v)
}

// decodeParams unmarshals params into target, treating absent params as {}.
func decodeParams(raw json.RawMessage, target any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, target)
}

type (
	Request      = RequestMessage
	Response     = ResponseMessage
	Notification = NotificationMessage
)
