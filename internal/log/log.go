package log

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a context-aware logger. Hooks enrich every entry with fields drawn
// from the request context (trace id, request id, operation name).
type Logger struct {
	zl    *zap.Logger
	hooks []Hook
}

// New constructs a logger from the config. Provided to fx.
func New(cfg Config) *Logger {
	cfg = cfg.withDefaults()

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.Encoding = cfg.Encoding

	if cfg.Encoding == "console" {
		zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	zl, err := zapCfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		zl = zap.NewNop()
	}

	return &Logger{
		zl:    zl.Named(cfg.Name),
		hooks: defaultHooks(),
	}
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields ...Field) {
	for _, hook := range l.hooks {
		fields = append(fields, hook.Apply(ctx, msg)...)
	}

	l.zl.Log(level, msg, fields...)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

var (
	globalMu     sync.RWMutex
	globalLogger = New(Config{})
)

// SetGlobalConfig rebuilds the global logger from the config.
func SetGlobalConfig(cfg Config) {
	globalMu.Lock()
	globalLogger = New(cfg)
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

// Debug logs a debug message with the global logger.
func Debug(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().log(ctx, zapcore.DebugLevel, msg, fields...)
}

// Info logs an info message with the global logger.
func Info(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().log(ctx, zapcore.InfoLevel, msg, fields...)
}

// Warn logs a warn message with the global logger.
func Warn(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().log(ctx, zapcore.WarnLevel, msg, fields...)
}

// Error logs an error message with the global logger.
func Error(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().log(ctx, zapcore.ErrorLevel, msg, fields...)
}
