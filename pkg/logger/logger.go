// Package logger holds the process-wide zap loggers.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the structured logger.
	Log = zap.NewNop()
	// SLog is the sugared variant for printf-style call sites.
	SLog = Log.Sugar()
)

// Init builds a production logger, or a colored development logger outside
// production. debug lowers the level to Debug.
func Init(env string, debug bool) error {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set replaces the process loggers.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Log = l
	SLog = l.Sugar()
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
