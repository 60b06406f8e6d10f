package mcp

import (
	"net/http"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

// Error codes re-exported from types so transport code reads naturally.
const (
	ParseError     = types.ParseError
	InvalidRequest = types.InvalidRequest
	MethodNotFound = types.MethodNotFound
	InvalidParams  = types.InvalidParams
	InternalError  = types.InternalError
)

// MCPError is the structured error shared with the tool layer.
type MCPError = types.MCPError

// isProtocolError reports whether a tool failure belongs in the JSON-RPC
// error member rather than an isError tool result. These are the failures
// where the call itself was malformed.
func isProtocolError(code int) bool {
	switch code {
	case MethodNotFound, InvalidParams, InvalidRequest, types.SchemaValidationFailed:
		return true
	}
	return false
}

// errorFromMCP builds a JSON-RPC error response from err.
func errorFromMCP(id any, err *MCPError) Response {
	return ErrorResponse(id, err.Code, err.Message, err.Data)
}

// httpStatus maps an error code to the status the REST routes answer with.
func httpStatus(code int) int {
	switch code {
	case InvalidParams, InvalidRequest, ParseError,
		types.SchemaValidationFailed, types.InvalidPermit,
		types.UnsupportedAuth, types.MissingField:
		return http.StatusBadRequest
	case MethodNotFound, types.TokenNotFound, types.WalletNotConnected:
		return http.StatusNotFound
	case types.ChainQueryFailed, types.ContractQueryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
