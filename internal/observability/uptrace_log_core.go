package observability

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

const (
	uptraceLogInstrumentation = "release-league/internal/platform/logging"
	healthPath                = "/healthz"
)

// otelLogCore forwards zap entries to the global OpenTelemetry log provider
// so that Uptrace receives them next to the traces.
type otelLogCore struct {
	zapcore.LevelEnabler
	logger otellog.Logger
	fields []zapcore.Field
}

func newOTelLogCore(level zapcore.LevelEnabler, serviceVersion string) zapcore.Core {
	return &otelLogCore{
		LevelEnabler: level,
		logger: otelglobal.Logger(
			uptraceLogInstrumentation,
			otellog.WithInstrumentationVersion(serviceVersion),
		),
	}
}

func (c *otelLogCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

func (c *otelLogCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *otelLogCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range c.fields {
		field.AddTo(enc)
	}
	for _, field := range fields {
		field.AddTo(enc)
	}
	if isHealthCheckLog(entry.Message, enc.Fields) {
		return nil
	}

	ctx := contextFromTraceFields(enc.Fields)
	severity := toOTelSeverity(entry.Level)
	if !c.logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: entry.Message}) {
		return nil
	}

	record := otellog.Record{}
	record.SetTimestamp(entry.Time)
	record.SetObservedTimestamp(time.Now().UTC())
	record.SetSeverity(severity)
	record.SetSeverityText(strings.ToUpper(entry.Level.String()))
	record.SetEventName(entry.Message)
	record.SetBody(otellog.StringValue(entry.Message))
	record.AddAttributes(mapToOTelAttributes(enc.Fields)...)

	c.logger.Emit(ctx, record)
	return nil
}

func (c *otelLogCore) Sync() error {
	return nil
}

func isHealthCheckLog(msg string, fields map[string]any) bool {
	if msg != "http request" {
		return false
	}
	path, ok := fields["path"].(string)
	return ok && path == healthPath
}

// contextFromTraceFields rebuilds the span context that logging attached as
// trace_id/span_id so the record is correlated with its trace.
func contextFromTraceFields(fields map[string]any) context.Context {
	ctx := context.Background()
	rawTrace, _ := fields["trace_id"].(string)
	rawSpan, _ := fields["span_id"].(string)
	traceID, err := trace.TraceIDFromHex(rawTrace)
	if err != nil {
		return ctx
	}
	spanID, err := trace.SpanIDFromHex(rawSpan)
	if err != nil {
		return ctx
	}
	return trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))
}

func toOTelSeverity(level zapcore.Level) otellog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return otellog.SeverityDebug
	case level == zapcore.InfoLevel:
		return otellog.SeverityInfo
	case level == zapcore.WarnLevel:
		return otellog.SeverityWarn
	case level >= zapcore.DPanicLevel:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityError
	}
}

func mapToOTelAttributes(fields map[string]any) []otellog.KeyValue {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]otellog.KeyValue, 0, len(keys))
	for _, key := range keys {
		out = append(out, otellog.KeyValue{Key: key, Value: toOTelLogValue(fields[key])})
	}
	return out
}

// toOTelLogValue converts the value shapes produced by zapcore's map encoder.
func toOTelLogValue(value any) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case int64:
		return otellog.Int64Value(v)
	case uint32:
		return otellog.Int64Value(int64(v))
	case float32:
		return otellog.Float64Value(float64(v))
	case float64:
		return otellog.Float64Value(v)
	case time.Duration:
		return otellog.StringValue(v.String())
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case []any:
		items := make([]otellog.Value, 0, len(v))
		for _, item := range v {
			items = append(items, toOTelLogValue(item))
		}
		return otellog.SliceValue(items...)
	case map[string]any:
		return otellog.MapValue(mapToOTelAttributes(v)...)
	default:
		return otellog.StringValue(fmt.Sprint(v))
	}
}
