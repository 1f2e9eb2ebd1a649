// Package observability builds the structured loggers used by the resolution core and its tools.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/roadwar/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.InitialFields = map[string]any{"app": "roadwar"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// EventLevel returns the level combat events are logged at. ok is false when
// event logging is disabled.
//
// Postcondition: Returns an error only for an unparseable level.
func EventLevel(cfg config.LoggingConfig) (level zapcore.Level, ok bool, err error) {
	if cfg.Events == "" {
		return zapcore.InfoLevel, false, nil
	}
	level, err = zapcore.ParseLevel(cfg.Events)
	if err != nil {
		return zapcore.InfoLevel, false, fmt.Errorf("parsing event log level %q: %w", cfg.Events, err)
	}
	return level, true, nil
}
