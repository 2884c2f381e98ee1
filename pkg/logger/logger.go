// Package logger builds the structured logger shared by all services.
// The slog API is used throughout the code base; zap does the encoding.
package logger

import (
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New creates a JSON logger at the given level.
func New(level string) *slog.Logger {
	log, _ := NewWithFormat(level, "json")
	return log
}

// NewWithFormat creates a logger at the given level using either the "json"
// or the "console" encoder. The returned func flushes buffered entries.
func NewWithFormat(level, format string) (*slog.Logger, func() error) {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	zapLogger, err := cfg.Build()
	if err != nil {
		zapLogger = zap.NewNop()
	}

	return slog.New(zapslog.NewHandler(zapLogger.Core())), zapLogger.Sync
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
