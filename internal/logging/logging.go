package logging

import (
	"fmt"

	"go-referral/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from the log section of the config.
func NewLogger(c *conf.Log) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch c.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	levelName := c.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Compile-time interface check
var _ log.Logger = (*KratosLogger)(nil)

// KratosLogger adapts a zap logger to the kratos log.Logger interface.
type KratosLogger struct {
	logger *zap.Logger
}

// NewKratosLogger wraps logger for use by the kratos application and transports.
func NewKratosLogger(logger *zap.Logger) log.Logger {
	return &KratosLogger{logger: logger.WithOptions(zap.AddCallerSkip(2))}
}

// Log writes keyvals as zap fields. A "msg" key, when present, becomes the message.
func (l *KratosLogger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	msg := ""
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case log.LevelDebug:
		l.logger.Debug(msg, fields...)
	case log.LevelWarn:
		l.logger.Warn(msg, fields...)
	case log.LevelError, log.LevelFatal:
		l.logger.Error(msg, fields...)
	default:
		l.logger.Info(msg, fields...)
	}
	return nil
}
