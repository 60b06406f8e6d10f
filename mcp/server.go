package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
	"github.com/MrGarbonzo/secret-network-mcp/db"
	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/tools"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/models"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
	"github.com/MrGarbonzo/secret-network-mcp/wallet"
)

// Version is reported to clients in serverInfo.
const Version = "0.1.0"

// maxMessageBytes bounds one JSON-RPC message on stdio and over HTTP.
const maxMessageBytes = 1 << 20

// StdioServer handles MCP communication over stdio. The HTTP transport reuses
// it for dispatch and tool execution.
type StdioServer struct {
	config Config

	chain   chain.Querier
	tokens  *registry.Registry
	wallets wallet.Store
	db      *gorm.DB
	ownsDB  bool

	tools        *tools.Registry
	router       *Router
	sessionState *SessionState
	sessionID    string

	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
}

// ServerOption overrides a dependency NewStdioServer would otherwise build
// from Config.
type ServerOption func(*StdioServer)

// WithChain sets the chain client.
func WithChain(q chain.Querier) ServerOption {
	return func(s *StdioServer) { s.chain = q }
}

// WithTokens sets the token registry.
func WithTokens(r *registry.Registry) ServerOption {
	return func(s *StdioServer) { s.tokens = r }
}

// WithWallets sets the wallet store.
func WithWallets(w wallet.Store) ServerOption {
	return func(s *StdioServer) { s.wallets = w }
}

// WithDB sets the database used for wallets and the query log. The caller
// keeps ownership and closes it.
func WithDB(database *gorm.DB) ServerOption {
	return func(s *StdioServer) { s.db = database }
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) ServerOption {
	return func(s *StdioServer) {
		s.reader = bufio.NewReader(in)
		s.writer = out
	}
}

// NewStdioServer creates a new MCP server that communicates over stdio
func NewStdioServer(config Config, options ...ServerOption) (*StdioServer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &StdioServer{
		config:       config,
		router:       NewRouter(),
		sessionState: NewSessionState(),
		sessionID:    generateSessionID(),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.reader == nil {
		s.reader = bufio.NewReader(os.Stdin)
	}
	if s.writer == nil {
		s.writer = os.Stdout
	}

	if s.tokens == nil {
		tokens := registry.Default()
		if config.TokensFile != "" {
			var err error
			if tokens, err = registry.LoadFile(config.TokensFile); err != nil {
				return nil, err
			}
		}
		s.tokens = tokens
	}

	if s.db == nil && config.DatabaseURL != "" {
		database, err := db.Connect(config.DatabaseURL, config.Debug)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.db = database
		s.ownsDB = true
	}

	if s.wallets == nil {
		if s.db != nil {
			s.wallets = wallet.NewGormStore(s.db)
		} else {
			s.wallets = wallet.NewMemoryStore()
		}
	}

	if s.chain == nil {
		s.chain = chain.NewClient(config.ChainConfig())
	}

	toolRegistry, err := tools.NewRegistry(s)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	s.tools = toolRegistry
	s.registerHandlers()

	logger.Log.Info("MCP server created",
		zap.String("session_id", s.sessionID),
		zap.Int("tools", len(toolRegistry.List())),
		zap.Int("tokens", s.tokens.Len()),
		zap.Bool("persistent", s.db != nil))
	return s, nil
}

// Start processes newline-delimited JSON-RPC messages until EOF or until ctx
// is cancelled between messages.
func (s *StdioServer) Start(ctx context.Context) error {
	logger.Log.Info("MCP stdio server started", zap.String("session_id", s.sessionID))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, tooLong, err := readLine(s.reader, maxMessageBytes)
		if tooLong {
			logger.Log.Warn("Dropping oversized message", zap.Int("limit", maxMessageBytes))
			s.sendResponse(ErrorResponse(nil, InvalidRequest, fmt.Sprintf("Message exceeds %d bytes", maxMessageBytes)))
		} else if len(bytes.TrimSpace(line)) > 0 {
			if resp := s.HandleMessage(ctx, line); resp != nil {
				s.sendResponse(*resp)
			}
		}
		if errors.Is(err, io.EOF) {
			logger.Log.Info("EOF received, shutting down")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
}

// readLine reads up to the next newline. A line longer than limit is
// discarded and reported as tooLong.
func readLine(r *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > limit {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return line, tooLong, err
		}
	}
}

// HandleMessage decodes and dispatches one JSON-RPC message. It returns nil
// for notifications.
func (s *StdioServer) HandleMessage(ctx context.Context, data []byte) *Response {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		resp := ErrorResponse(nil, InvalidRequest, "Batch requests are not supported")
		return &resp
	}

	var msg incomingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Log.Debug("Unparseable message", zap.String("data", truncate(string(data), 200)), zap.Error(err))
		resp := ErrorResponse(nil, ParseError, "Parse error", err.Error())
		return &resp
	}

	if msg.isNotification() {
		if err := s.router.DispatchNotification(ctx, msg.notification()); err != nil {
			logger.Log.Debug("Notification ignored", zap.String("method", msg.Method), zap.Error(err))
		}
		return nil
	}

	logger.Log.Debug("Handling request", zap.String("method", msg.Method))
	resp := s.router.DispatchRequest(ctx, msg.request())
	return &resp
}

// CallTool runs a tool, logs the outcome and records contract queries in the
// query log when a database is configured.
func (s *StdioServer) CallTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	ctx, audit := types.WithAudit(ctx)

	start := time.Now()
	result, err := s.tools.Execute(ctx, name, args)
	elapsed := time.Since(start)

	fields := []zap.Field{
		zap.String("tool", name),
		zap.String("session_id", s.sessionID),
		zap.Duration("duration", elapsed),
	}
	if err != nil {
		logger.Log.Info("Tool call failed", append(fields, zap.Error(err))...)
	} else {
		logger.Log.Debug("Tool call completed", fields...)
	}

	s.recordQuery(name, audit, elapsed, err)
	return result, err
}

func (s *StdioServer) recordQuery(tool string, audit *types.Audit, elapsed time.Duration, callErr error) {
	if s.db == nil {
		return
	}
	contract, queryType, authType, digest := audit.Snapshot()
	if contract == "" {
		return
	}

	entry := models.QueryLog{
		ID:           uuid.NewString(),
		SessionID:    s.sessionID,
		Tool:         tool,
		Contract:     contract,
		QueryType:    queryType,
		AuthType:     authType,
		PermitDigest: digest,
		Success:      callErr == nil,
		DurationMs:   elapsed.Milliseconds(),
	}
	if callErr != nil {
		entry.Error = truncate(callErr.Error(), 500)
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.Log.Warn("Failed to write query log", zap.String("tool", tool), zap.Error(err))
	}
}

// sendResponse writes a response to stdout
func (s *StdioServer) sendResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("Failed to marshal response", zap.Any("id", resp.ID), zap.Error(err))
		data, _ = json.Marshal(ErrorResponse(resp.ID, InternalError, "Failed to encode response"))
	}
	s.writeFrame(data)
}

// writeFrame writes one newline-terminated message. Responses and
// notifications may come from different goroutines.
func (s *StdioServer) writeFrame(data []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.writer.Write(append(data, '\n')); err != nil {
		logger.Log.Warn("Failed to write frame", zap.Error(err))
	}
}

// Tools returns the tool registry.
func (s *StdioServer) Tools() *tools.Registry { return s.tools }

// DB returns the database, or nil when running without persistence.
func (s *StdioServer) DB() *gorm.DB { return s.db }

// Close releases the database if the server opened it.
func (s *StdioServer) Close() error {
	if s.db == nil || !s.ownsDB {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
