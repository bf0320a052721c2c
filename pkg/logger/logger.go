// Package logger creates the zap loggers used by the signer and its tools.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig holds the configuration for logger creation.
type LoggerConfig struct {
	// Debug enables debug-level logging when true, otherwise uses info level
	Debug bool
}

// NewLogger creates a new structured logger with the specified configuration.
// The logger uses JSON encoding and ISO8601 timestamps. Debug mode also logs every
// dispatched signing operation.
//
// Parameters:
//   - cfg: The logger configuration
//   - options: Additional zap options to apply to the logger
//
// Returns:
//   - *zap.Logger: A configured zap logger instance
//   - error: An error if the logger cannot be created
func NewLogger(cfg *LoggerConfig, options ...zap.Option) (*zap.Logger, error) {
	mergedOptions := append([]zap.Option{zap.WithCaller(true)}, options...)

	c := zap.NewProductionConfig()
	c.EncoderConfig = zap.NewProductionEncoderConfig()
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.Level = zap.NewAtomicLevelAt(Level(cfg))

	return c.Build(mergedOptions...)
}

// Level returns the minimum level selected by cfg. A nil cfg selects info.
func Level(cfg *LoggerConfig) zapcore.Level {
	if cfg != nil && cfg.Debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}
