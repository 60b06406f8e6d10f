package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

const serverInstructions = "Read-only access to Secret Network. Private SNIP-20/SNIP-721 data needs a viewing_key " +
	"(with the address it belongs to) or a signed query permit; never both. Use build_query to obtain a query " +
	"for client-side execution."

func (s *StdioServer) registerHandlers() {
	s.router.RegisterRequest("initialize", s.handleInitialize)
	s.router.RegisterRequest("ping", s.handlePing)
	s.router.RegisterRequest("tools/list", s.handleListTools)
	s.router.RegisterRequest("tools/call", s.handleCallTool)
	s.router.RegisterRequest("logging/setLevel", s.handleSetLoggingLevel)
	s.router.RegisterRequest("prompts/list", func(_ context.Context, req Request) Response {
		return SuccessResponse(req.ID, map[string]any{"prompts": []any{}})
	})
	s.router.RegisterRequest("resources/list", func(_ context.Context, req Request) Response {
		return SuccessResponse(req.ID, map[string]any{"resources": []any{}})
	})

	s.router.RegisterNotification("notifications/initialized", s.handleInitialized)
	s.router.RegisterNotification("initialized", s.handleInitialized)
	s.router.RegisterNotification("notifications/cancelled", func(_ context.Context, msg Notification) error {
		// requests run to completion in arrival order, so there is nothing to abort
		logger.Log.Debug("Cancellation received", zap.ByteString("params", msg.Params))
		return nil
	})
}

// handleInitialize handles the MCP initialization handshake
func (s *StdioServer) handleInitialize(_ context.Context, req Request) Response {
	var params struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ClientInfo      ClientInfo     `json:"clientInfo"`
	}
	if err := decodeParams(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, InvalidParams, "Invalid initialize parameters", err.Error())
	}

	s.sessionState.MarkInitialized(ProtocolVersion, params.ClientInfo, params.Capabilities)
	logger.Log.Info("Client initialized",
		zap.String("client", params.ClientInfo.Name),
		zap.String("client_version", params.ClientInfo.Version),
		zap.String("requested_protocol", params.ProtocolVersion))

	return SuccessResponse(req.ID, map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools":   map[string]any{"listChanged": false},
			"logging": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "secret-network-mcp",
			"version": Version,
		},
		"instructions": serverInstructions,
	})
}

func (s *StdioServer) handleInitialized(context.Context, Notification) error {
	logger.Log.Debug("Initialization complete")
	return nil
}

// handlePing responds to keepalive pings
func (s *StdioServer) handlePing(_ context.Context, req Request) Response {
	return SuccessResponse(req.ID, map[string]any{})
}

// handleListTools returns one page of tool definitions.
func (s *StdioServer) handleListTools(_ context.Context, req Request) Response {
	params, err := decodePaginationParams(req.Params)
	if err != nil {
		return ErrorResponse(req.ID, InvalidParams, "Invalid pagination parameters", err.Error())
	}
	page, next, err := applyPagination(s.tools.Definitions(), params.Cursor, params.Limit)
	if err != nil {
		return ErrorResponse(req.ID, InvalidParams, err.Error())
	}

	result := map[string]any{"tools": page}
	if next != nil {
		result["nextCursor"] = *next
	}
	return SuccessResponse(req.ID, result)
}

// handleCallTool executes a tool. Malformed calls are JSON-RPC errors; tool
// failures are returned as isError results the model can read.
func (s *StdioServer) handleCallTool(ctx context.Context, req Request) Response {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
		Meta      Meta            `json:"_meta"`
	}
	if err := decodeParams(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, InvalidParams, "Invalid params structure", err.Error())
	}
	if strings.TrimSpace(params.Name) == "" {
		return ErrorResponse(req.ID, InvalidParams, "Tool name is required")
	}
	if token, ok := params.Meta.ProgressToken(); ok {
		ctx = withProgressToken(ctx, token)
	}

	result, err := s.CallTool(ctx, params.Name, params.Arguments)
	if err != nil {
		mcpErr := types.FromError(err)
		if isProtocolError(mcpErr.Code) {
			return errorFromMCP(req.ID, mcpErr)
		}
		s.sendLogNotification(LogLevelWarning, "Tool call failed", LogData{
			"tool": params.Name,
			"code": mcpErr.Code,
		})
		return SuccessResponse(req.ID, types.ErrorResult(mcpErr))
	}
	return SuccessResponse(req.ID, result)
}
