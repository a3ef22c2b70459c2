// Package logging is the structured logger shared by every binary. Call
// sites pass slog-style alternating key/value pairs; entries are written by
// zap.
package logging

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// badKey labels a trailing value that has no key.
const badKey = "!BADKEY"

type Logger struct {
	z *zap.Logger
	// syncOnce is shared with every derived logger so the sink flushes once.
	syncOnce *sync.Once
}

var global atomic.Pointer[Logger]

func NewJSON(level Level) *Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder
	enc.FunctionKey = zapcore.OmitKey

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(os.Stdout), level)
	return FromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel)))
}

func NewNop() *Logger {
	return FromZap(nil)
}

func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z, syncOnce: new(sync.Once)}
}

// Default returns the process logger, a no-op until SetDefault is called.
func Default() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	return NewNop()
}

func SetDefault(l *Logger) {
	if l == nil {
		l = NewNop()
	}
	global.Store(l)
}

func (l *Logger) core() *zap.Logger {
	if l == nil || l.z == nil {
		return Default().z
	}
	return l.z
}

func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.z == nil {
		return zap.NewNop()
	}
	return l.z
}

// Tee returns a logger that also writes every entry to the given cores.
func (l *Logger) Tee(cores ...zapcore.Core) *Logger {
	z := l.Zap()
	if len(cores) > 0 {
		z = z.WithOptions(zap.WrapCore(func(own zapcore.Core) zapcore.Core {
			return zapcore.NewTee(append([]zapcore.Core{own}, cores...)...)
		}))
	}
	return FromZap(z)
}

func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return NewNop()
	}
	return &Logger{z: l.Zap().With(toFields(args, 0)...), syncOnce: l.syncOnce}
}

// Sync flushes buffered entries once per root logger.
func (l *Logger) Sync() (err error) {
	if l == nil || l.z == nil {
		return nil
	}
	l.syncOnce.Do(func() { err = l.z.Sync() })
	return err
}

func (l *Logger) Debug(msg string, args ...any) { l.emit(nil, LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.emit(nil, LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.emit(nil, LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.emit(nil, LevelError, msg, args) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelError, msg, args)
}

func (l *Logger) emit(ctx context.Context, level Level, msg string, args []any) {
	ce := l.core().Check(level, msg)
	if ce == nil {
		return
	}

	var sc trace.SpanContext
	if ctx != nil {
		sc = trace.SpanContextFromContext(ctx)
	}
	extra := 0
	if sc.IsValid() {
		extra = 2
	}

	fields := toFields(args, extra)
	if sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	ce.Write(fields...)
}

// toFields converts key/value pairs. A zap.Field may be passed in place of a
// pair; errors keep their key so "err" and "error" both render as strings.
func toFields(args []any, spare int) []zap.Field {
	if len(args) == 0 && spare == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(args)/2+spare)
	for i := 0; i < len(args); {
		switch k := args[i].(type) {
		case zap.Field:
			out = append(out, k)
			i++
			continue
		case string:
			if i+1 < len(args) {
				out = append(out, pairField(k, args[i+1]))
				i += 2
				continue
			}
		}
		out = append(out, zap.Any(badKey, args[i]))
		i++
	}
	return out
}

func pairField(key string, value any) zap.Field {
	if key == "" {
		key = badKey
	}
	if err, ok := value.(error); ok {
		return zap.NamedError(key, err)
	}
	return zap.Any(key, value)
}
