package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger. It discards everything until Init is called, so
// packages can log unconditionally.
var Log = zap.NewNop()

// Config holds configuration for the logger
type Config struct {
	Level   string
	JSON    bool
	Service string
}

// Init replaces the global logger. Output always goes to stderr because the
// stdio transport owns stdout.
func Init(config Config) (*zap.Logger, error) {
	l, err := New(config)
	if err != nil {
		return nil, err
	}
	Log = l
	return l, nil
}

// New builds a logger without touching the global one.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if config.JSON {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.MessageKey = "message"
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapConfig.DisableStacktrace = true
	}

	zapConfig.Level = zap.NewAtomicLevelAt(ParseLevel(config.Level))
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	service := config.Service
	if service == "" {
		service = "secret-mcp"
	}
	zapConfig.InitialFields = map[string]any{"service": service}

	return zapConfig.Build()
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes the global logger, ignoring the EINVAL stderr returns on some
// platforms.
func Sync() {
	if err := Log.Sync(); err != nil && !strings.Contains(err.Error(), "invalid argument") {
		_, _ = os.Stderr.WriteString("logger sync: " + err.Error() + "\n")
	}
}
