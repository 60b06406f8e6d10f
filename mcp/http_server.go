package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MrGarbonzo/secret-network-mcp/db"
	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

// HTTPServer exposes the MCP server over HTTP: JSON-RPC on /mcp plus a small
// REST surface for calling tools directly.
type HTTPServer struct {
	config  Config
	core    *StdioServer
	engine  *gin.Engine
	server  *http.Server
	limiter *RateLimiter
}

// NewHTTPServer wires routes and middleware around core. The core's stdout
// is not used; progress notifications have no stream to go to over HTTP.
func NewHTTPServer(config Config, core *StdioServer) (*HTTPServer, error) {
	if core == nil {
		return nil, errors.New("core server is required")
	}
	corsMiddleware, err := newCORS(config.CORSOrigins)
	if err != nil {
		return nil, err
	}

	if !config.Debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &HTTPServer{config: config, core: core}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(), corsMiddleware)
	// Rejected credentials count against the caller's budget too.
	if config.HTTPRate > 0 {
		s.limiter = NewRateLimiter(config.HTTPRate, config.HTTPBurst)
		engine.Use(s.limiter.Middleware())
	}
	engine.Use(s.authMiddleware())

	engine.GET("/health", s.handleHealth)
	engine.POST("/mcp", s.handleMCPRequest)
	api := engine.Group("/api")
	api.GET("/tools", s.handleListTools)
	api.POST("/tools/:name", s.handleCallTool)

	s.engine = engine
	s.server = &http.Server{
		Addr:              net.JoinHostPort(config.HTTPHost, strconv.Itoa(config.HTTPPort)),
		Handler:           engine,
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func newCORS(origins []string) (gin.HandlerFunc, error) {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	cfg.ExposeHeaders = []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS origins: %w", err)
	}
	return cors.New(cfg), nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// authMiddleware requires the configured bearer token. With no key set the
// server is open, which is only sensible on localhost.
func (s *HTTPServer) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.APIKey == "" || c.Request.URL.Path == "/health" || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if auth == "" {
			abortWithError(c, http.StatusUnauthorized, "Missing Authorization header")
			return
		}
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.config.APIKey)) != 1 {
			abortWithError(c, http.StatusUnauthorized, "Invalid API key")
			return
		}
		c.Next()
	}
}

// readBody reads at most maxMessageBytes of the request body, answering 413
// when the client sends more.
func readBody(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMessageBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		abortWithError(c, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	return body, true
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    status,
			"message": message,
		},
	})
}

// handleMCPRequest processes one JSON-RPC message. Notifications are
// acknowledged with 202 and no body.
func (s *HTTPServer) handleMCPRequest(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	resp := s.core.HandleMessage(c.Request.Context(), body)
	if resp == nil {
		c.Status(http.StatusAccepted)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) handleListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.core.tools.Definitions()})
}

// handleCallTool runs a tool with the request body as its arguments.
func (s *HTTPServer) handleCallTool(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	result, err := s.core.CallTool(c.Request.Context(), c.Param("name"), body)
	if err != nil {
		mcpErr := types.FromError(err)
		c.JSON(httpStatus(mcpErr.Code), gin.H{"error": mcpErr})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleHealth reports LCD reachability and database state.
func (s *HTTPServer) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	health := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"version":   Version,
		"session":   s.core.sessionID,
		"lcd":       "reachable",
		"database":  "disabled",
	}

	if err := s.core.chain.Ping(ctx); err != nil {
		logger.Log.Warn("LCD health check failed", zap.Error(err))
		health["status"] = "unhealthy"
		health["lcd"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if s.core.db != nil {
		health["database"] = "connected"
		if err := db.Ping(s.core.db); err != nil {
			health["status"] = "unhealthy"
			health["database"] = "disconnected"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, health)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler { return s.engine }

// Addr returns the listen address.
func (s *HTTPServer) Addr() string { return s.server.Addr }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

// Close stops the server and releases the core's resources.
func (s *HTTPServer) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return s.core.Close()
}
