// Command secret-mcp serves read-only Secret Network queries to MCP clients
// over stdio or HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
	"github.com/MrGarbonzo/secret-network-mcp/mcp"
)

// Global flags
var (
	envFile    string
	debug      bool
	dbURL      string
	lcdURL     string
	chainID    string
	tokensFile string
)

var rootCmd = &cobra.Command{
	Use:   "secret-mcp",
	Short: "Secret Network MCP server",
	Long: `secret-mcp exposes Secret Network chain and contract queries as MCP tools.

Private SNIP-20 and SNIP-721 queries are authenticated with a viewing key or
a signed query permit supplied by the client. The server never signs or
broadcasts transactions.

Without a subcommand the server speaks MCP over stdio.`,
	Version:       mcp.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMCPServer,
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve MCP over stdin/stdout",
	RunE:  runMCPServer,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.StringVar(&dbURL, "db", "", "database DSN for wallets and the query log (sqlite path, :memory:, or libsql URL)")
	flags.StringVar(&lcdURL, "lcd", "", "LCD endpoint (default "+mcp.DefaultConfig().LCDURL+")")
	flags.StringVar(&chainID, "chain-id", "", "chain id recorded for wallet connections without one")
	flags.StringVar(&tokensFile, "tokens", "", "TOML file extending the built-in token registry")

	rootCmd.AddCommand(stdioCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokensCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildConfig layers defaults, the dotenv file, the environment and finally
// explicit flags.
func buildConfig(cmd *cobra.Command) (mcp.Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return mcp.Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	config := mcp.DefaultConfig()
	if err := config.ApplyEnv(); err != nil {
		return mcp.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		config.Debug = debug
	}
	if flags.Changed("db") {
		config.DatabaseURL = dbURL
	}
	if flags.Changed("lcd") {
		config.LCDURL = lcdURL
	}
	if flags.Changed("chain-id") {
		config.ChainID = chainID
	}
	if flags.Changed("tokens") {
		config.TokensFile = tokensFile
	}
	return config, config.Validate()
}

func setupLogger(config mcp.Config) error {
	if _, err := logger.Init(config.LoggerConfig()); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runMCPServer(cmd *cobra.Command, _ []string) error {
	config, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogger(config); err != nil {
		return err
	}
	defer logger.Sync()

	logger.Log.Info("Starting Secret Network MCP server",
		zap.String("transport", "stdio"),
		zap.String("lcd", config.LCDURL),
		zap.String("chain_id", config.ChainID),
		zap.Bool("persistent", config.DatabaseURL != ""))

	server, err := mcp.NewStdioServer(config)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer server.Close()

	ctx, stop := signalContext()
	defer stop()
	return server.Start(ctx)
}
