package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"roster-bot/config"
)

// NewLogger builds a json (production) or console (development) logger.
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// Recorder is an append-only trace sink backed by zap.
type Recorder struct {
	l *zap.Logger
}

func NewRecorder(l *zap.Logger) *Recorder {
	return &Recorder{l: l.WithOptions(zap.AddCallerSkip(1))}
}

func (r *Recorder) Record(message string) {
	r.l.Info(message)
}
