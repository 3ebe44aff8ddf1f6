// Package logger configures structured logging for shiptea.
//
// The terminal belongs to the TUI, so records go to a JSON-lines file.
// Application code uses logr.Logger; zap is the backend.
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerContextKey struct{}

const (
	TimeStampKey = "timestamp"
	MessageKey   = "message"
	VersionKey   = "version"
)

var (
	mu sync.Mutex

	globalZapLogger  *zap.Logger
	globalLogrLogger *logr.Logger

	defaultNoopLogger = logr.Discard()
)

// ParseLevel maps a config level name to a zap level.
// logr verbosity V(n) maps to zap level -n, so "debug" enables V(1).
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Setup opens path for appending and installs the global logger.
// Calling Setup again replaces the previous logger.
func Setup(path string, level zapcore.Level, version string) (*logr.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return install(zapcore.AddSync(f), level, version), nil
}

func install(sink zapcore.WriteSyncer, level zapcore.Level, version string) *logr.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(sink),
		zap.NewAtomicLevelAt(level),
	).With([]zapcore.Field{zap.String(VersionKey, version)})

	zl := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	gl := zapr.NewLogger(zl)

	mu.Lock()
	defer mu.Unlock()
	if globalZapLogger != nil {
		_ = globalZapLogger.Sync()
	}
	globalZapLogger = zl
	globalLogrLogger = &gl
	return &gl
}

// WithLogger returns a context carrying log.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the context logger, then the global one, then a no-op.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	return Global()
}

// Global returns the installed logger or a no-op logger.
func Global() *logr.Logger {
	mu.Lock()
	defer mu.Unlock()
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Sync flushes buffered entries. Call it before exit.
func Sync() {
	mu.Lock()
	zl := globalZapLogger
	mu.Unlock()
	if zl == nil {
		return
	}
	if err := zl.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
	}
}

func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}
