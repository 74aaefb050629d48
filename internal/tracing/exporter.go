package tracing

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// LogExporter writes each finished span as one structured INFO line.
type LogExporter struct {
	log *zap.Logger
}

// NewLogExporter returns an exporter writing to log, or to a no-op logger
// when log is nil.
func NewLogExporter(log *zap.Logger) *LogExporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogExporter{log: log.Named("trace")}
}

func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := []zap.Field{
			zap.String("trace_id", s.SpanContext().TraceID().String()),
			zap.String("span_id", s.SpanContext().SpanID().String()),
			zap.String("kind", s.SpanKind().String()),
			zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
			zap.String("status", s.Status().Code.String()),
		}
		if s.Parent().IsValid() {
			fields = append(fields, zap.String("parent_span_id", s.Parent().SpanID().String()))
		}

		events := make([]string, 0, len(s.Events()))
		for _, ev := range s.Events() {
			events = append(events, ev.Name)
		}
		fields = append(fields, zap.Strings("events", events))

		for _, kv := range s.Attributes() {
			fields = append(fields, zap.String("attr."+string(kv.Key), kv.Value.Emit()))
		}

		e.log.Info(s.Name(), fields...)
	}
	return ctx.Err()
}

func (e *LogExporter) Shutdown(context.Context) error {
	_ = e.log.Sync()
	return nil
}
