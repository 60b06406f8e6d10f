package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
	"github.com/MrGarbonzo/secret-network-mcp/mcp"
)

var (
	httpHost    string
	httpPort    int
	apiKey      string
	corsOrigins []string
	httpRate    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP and the tool REST API over HTTP",
	Long: `Start the HTTP transport.

  POST /mcp               JSON-RPC messages
  GET  /api/tools         tool definitions
  POST /api/tools/{name}  call a tool with the body as arguments
  GET  /health            LCD and database status

Set --api-key (or MCP_API_KEY) whenever the server listens beyond localhost.

Example:
  secret-mcp serve --host 0.0.0.0 --port 8080 --api-key $KEY`,
	RunE: runHTTPServer,
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&httpHost, "host", "", "listen host (default 127.0.0.1)")
	flags.IntVar(&httpPort, "port", 0, "listen port (default 8080)")
	flags.StringVar(&apiKey, "api-key", "", "bearer token required on every route except /health")
	flags.StringSliceVar(&corsOrigins, "cors-origin", nil, "allowed CORS origins; * allows all")
	flags.IntVar(&httpRate, "rate", 0, "requests per second per client, 0 keeps the configured default")
}

func applyServeFlags(cmd *cobra.Command, config *mcp.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		config.HTTPHost = httpHost
	}
	if flags.Changed("port") {
		config.HTTPPort = httpPort
	}
	if flags.Changed("api-key") {
		config.APIKey = apiKey
	}
	if flags.Changed("cors-origin") {
		config.CORSOrigins = corsOrigins
	}
	if flags.Changed("rate") {
		config.HTTPRate = httpRate
		config.HTTPBurst = 2 * httpRate
	}
	return config.Validate()
}

func runHTTPServer(cmd *cobra.Command, _ []string) error {
	config, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, &config); err != nil {
		return err
	}
	if err := setupLogger(config); err != nil {
		return err
	}
	defer logger.Sync()

	if config.APIKey == "" && config.HTTPHost != "127.0.0.1" && config.HTTPHost != "localhost" {
		logger.Log.Warn("HTTP server has no API key and is not bound to localhost", zap.String("host", config.HTTPHost))
	}

	core, err := mcp.NewStdioServer(config)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	server, err := mcp.NewHTTPServer(config, core)
	if err != nil {
		core.Close()
		return fmt.Errorf("creating HTTP server: %w", err)
	}
	defer server.Close()

	ctx, stop := signalContext()
	defer stop()
	return server.Start(ctx)
}
