package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar names the variable read by InitializeFromEnv. Unset means
// no log output at all; otherwise one of debug, info, warn or error.
const LogLevelEnvVar = "SONOFF_LOG_LEVEL"

// maxBodyLog caps how much of a request or response body is logged
const maxBodyLog = 1024

// Initialize installs a console logger writing to stderr at level.
// An empty level falls back to SONOFF_LOG_LEVEL and, when that is empty
// too, to a no-op logger.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l, err := consoleConfig(lvl).Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l
	return nil
}

// consoleConfig keeps stdout free for command output
func consoleConfig(lvl zapcore.Level) zap.Config {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	return zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "console",
		EncoderConfig:    enc,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// ParseLevel maps a level name to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// InitializeFromEnv configures logging from SONOFF_LOG_LEVEL only
func InitializeFromEnv() error {
	return Initialize("")
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the process logger, a no-op one until Initialize runs
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogExchange logs one side of a device round trip at debug level.
// direction is "request" or "response".
func LogExchange(direction, url string, statusCode int, body []byte) {
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	fields := make([]zap.Field, 0, 5)
	fields = append(fields,
		zap.String("url", url),
		zap.Int("length", len(body)),
		zap.String("body", truncate(body)))
	if statusCode != 0 {
		fields = append(fields, zap.Int("status", statusCode))
	}
	Debug("Device "+direction, fields...)
}

// LogHTTPRequest logs a request received by the simulator
func LogHTTPRequest(remoteAddr, method, path string, statusCode int) {
	Info("Simulator request",
		zap.String("from", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", statusCode),
	)
}

func truncate(body []byte) string {
	if len(body) > maxBodyLog {
		return string(body[:maxBodyLog]) + "..."
	}
	return string(body)
}

// Sync flushes buffered entries; call it before exiting
func Sync() {
	if logger == nil {
		return
	}
	_ = logger.Sync()
}
