package mcp

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
)

// LogLevel is an RFC 5424 severity as used by MCP logging.
type LogLevel string

const (
	LogLevelDebug     LogLevel = "debug"
	LogLevelInfo      LogLevel = "info"
	LogLevelNotice    LogLevel = "notice"
	LogLevelWarning   LogLevel = "warning"
	LogLevelError     LogLevel = "error"
	LogLevelCritical  LogLevel = "critical"
	LogLevelAlert     LogLevel = "alert"
	LogLevelEmergency LogLevel = "emergency"
)

var logLevelRank = map[LogLevel]int{
	LogLevelDebug:     0,
	LogLevelInfo:      1,
	LogLevelNotice:    2,
	LogLevelWarning:   3,
	LogLevelError:     4,
	LogLevelCritical:  5,
	LogLevelAlert:     6,
	LogLevelEmergency: 7,
}

// LogData represents structured data for a log message
type LogData map[string]any

// handleSetLoggingLevel sets the minimum level of notifications/message.
func (s *StdioServer) handleSetLoggingLevel(_ context.Context, req Request) Response {
	var params struct {
		Level LogLevel `json:"level"`
	}
	if err := decodeParams(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, InvalidParams, "Invalid logging level parameters")
	}
	if _, ok := logLevelRank[params.Level]; !ok {
		return ErrorResponse(req.ID, InvalidParams, "Unknown logging level: "+string(params.Level))
	}

	s.sessionState.SetLoggingLevel(params.Level)
	logger.Log.Debug("Client logging level set", zap.String("level", string(params.Level)))
	return SuccessResponse(req.ID, map[string]any{})
}

// sendLogNotification sends a log message notification to the client
func (s *StdioServer) sendLogNotification(level LogLevel, message string, data LogData) {
	if !shouldEmitLog(s.sessionState.LoggingLevel(), level) {
		return
	}

	if data == nil {
		data = make(LogData)
	}
	data["message"] = message
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	s.emitNotification("notifications/message", map[string]any{
		"level":  level,
		"data":   data,
		"logger": "secret-mcp",
	})
}

// sendProgressNotification reports progress of a tool call to the client
func (s *StdioServer) sendProgressNotification(progressToken any, progress, total float64, message string) {
	params := map[string]any{
		"progressToken": progressToken,
		"progress":      progress,
		"total":         total,
	}
	if message != "" {
		params["message"] = message
	}
	s.emitNotification("notifications/progress", params)
}

func shouldEmitLog(min LogLevel, level LogLevel) bool {
	minRank, ok := logLevelRank[min]
	if !ok {
		minRank = logLevelRank[LogLevelInfo]
	}
	levelRank, ok := logLevelRank[level]
	if !ok {
		levelRank = logLevelRank[LogLevelInfo]
	}
	return levelRank >= minRank
}

func (s *StdioServer) emitNotification(method string, params any) {
	frame, err := json.Marshal(map[string]any{
		"jsonrpc": JSONRPCVersion,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		logger.Log.Warn("Failed to marshal notification", zap.String("method", method), zap.Error(err))
		return
	}
	s.writeFrame(frame)
}
