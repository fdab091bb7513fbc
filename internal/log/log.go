// Package log provides the structured logger threaded through the
// simulator via context.Context, in the manner of the teacher's own
// context-carried zap wrapper.
package log

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used throughout the simulator.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	// With returns a derived Logger with additional fields attached to every
	// subsequent entry.
	With(kv ...interface{}) Logger
}

type zapLogger struct {
	z *zap.Logger
}

// New builds a Logger writing to stderr at the given level ("debug", "info",
// "warn", "error"). An unrecognised level defaults to "info".
func New(level string) Logger {
	lvl := zapcore.InfoLevel
	_ = lvl.UnmarshalText([]byte(level))
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), lvl)
	return &zapLogger{z: zap.New(core)}
}

// Nop returns a Logger that discards everything, used as a safe default and
// in tests that don't care about log output.
func Nop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

func (l *zapLogger) log(lvl zapcore.Level, msg string, kv []interface{}) {
	fields := toFields(kv)
	switch lvl {
	case zapcore.DebugLevel:
		l.z.Debug(msg, fields...)
	case zapcore.WarnLevel:
		l.z.Warn(msg, fields...)
	case zapcore.ErrorLevel:
		l.z.Error(msg, fields...)
	default:
		l.z.Info(msg, fields...)
	}
}

func (l *zapLogger) Debug(msg string, kv ...interface{}) { l.log(zapcore.DebugLevel, msg, kv) }
func (l *zapLogger) Info(msg string, kv ...interface{})  { l.log(zapcore.InfoLevel, msg, kv) }
func (l *zapLogger) Warn(msg string, kv ...interface{})  { l.log(zapcore.WarnLevel, msg, kv) }
func (l *zapLogger) Error(msg string, kv ...interface{}) { l.log(zapcore.ErrorLevel, msg, kv) }

func (l *zapLogger) With(kv ...interface{}) Logger {
	return &zapLogger{z: l.z.With(toFields(kv)...)}
}

func toFields(kv []interface{}) []zap.Field {
	n := len(kv) / 2
	fields := make([]zap.Field, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprint(kv[2*i])
		fields = append(fields, zap.Any(key, kv[2*i+1]))
	}
	return fields
}

type loggerCtxKey struct{}

// CtxWith returns a new context embedding logger, recoverable with FromCtx.
func CtxWith(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromCtx returns the logger embedded in ctx, or a no-op logger if none was
// attached. FromCtx never returns nil.
func FromCtx(ctx context.Context) Logger {
	if ctx == nil {
		return Nop()
	}
	if l, ok := ctx.Value(loggerCtxKey{}).(Logger); ok {
		return l
	}
	return Nop()
}
