package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar controls verbosity when no level is passed to Initialize.
// Unset or empty means silent. Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "OPENSPRINKLER_LOG_LEVEL"

// maxDump bounds the bytes written by LogRawBytes
const maxDump = 256

// Initialize installs a coloured console logger on stderr. An empty level
// falls back to OPENSPRINKLER_LOG_LEVEL; if that is empty too, logging is
// disabled.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	return build(zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Encoding:         "console",
		EncoderConfig:    enc,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// InitializeJSON installs a JSON logger on stderr for long-running services
// whose output is collected by a log shipper.
func InitializeJSON(level string) error {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return build(config)
}

// InitializeFromEnv is Initialize("").
func InitializeFromEnv() error {
	return Initialize("")
}

func build(config zap.Config) error {
	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

// parseLevel maps a level name to zap, defaulting to info for anything it
// does not recognise.
func parseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// GetLogger returns the global logger, a no-op one until initialized.
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// LogRequest logs an outgoing controller request. The query must already be
// redacted.
func LogRequest(path string, query string) {
	Debug("Controller request",
		zap.String("path", path),
		zap.String("query", query),
	)
}

// LogResponse logs a controller response
func LogResponse(path string, statusCode int, size int, elapsed time.Duration) {
	Debug("Controller response",
		zap.String("path", path),
		zap.Int("status_code", statusCode),
		zap.Int("length", size),
		zap.Duration("elapsed", elapsed),
	)
}

// LogCommandResult logs the return code of a mutation endpoint. Anything but
// 1 (success) is a warning.
func LogCommandResult(path string, code int, message string) {
	if code == 1 {
		Debug("Command accepted", zap.String("path", path), zap.Int("result", code))
		return
	}
	Warn("Command rejected",
		zap.String("path", path),
		zap.Int("result", code),
		zap.String("message", message),
	)
}

// LogRawBytes logs the first bytes of a body the client could not decode.
func LogRawBytes(label string, data []byte) {
	truncated := len(data) > maxDump
	if truncated {
		data = data[:maxDump]
	}
	Debug(label,
		zap.Int("length", len(data)),
		zap.Bool("truncated", truncated),
		zap.String("hex", hex.EncodeToString(data)),
		zap.String("ascii", printable(data)),
	)
}

func printable(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b < 32 || b > 126 {
			b = '.'
		}
		out[i] = b
	}
	return string(out)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
