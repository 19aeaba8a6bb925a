package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// structured logger used across the service and CLI
type Logger struct {
	*zap.SugaredLogger
}

// builds a logger; verbose switches to a human-readable debug encoder
func NewLogger(verbose bool) *Logger {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.DisableStacktrace = !verbose

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewExample()
	}

	return &Logger{SugaredLogger: base.Sugar()}
}

// builds a logger from a level name (debug, info, warn, error)
func NewLoggerWithLevel(level string, verbose bool) *Logger {
	logger := NewLogger(verbose)
	if verbose || level == "" {
		return logger
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return logger
	}

	return &Logger{
		SugaredLogger: logger.Desugar().
			WithOptions(zap.IncreaseLevel(lvl)).
			Sugar(),
	}
}

// discards everything; used by tests
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// child logger carrying the given key/value pairs
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}

// child logger tagged with a component name
func (l *Logger) Named(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(component)}
}
