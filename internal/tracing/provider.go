// internal/tracing/provider.go
//
// OpenTelemetry SDK bootstrap.
//
// Exporters
// ---------
//   log    spans are written through zap at INFO (default).
//   otlp   spans are batched to an OTLP/gRPC collector at tracing.endpoint.
//   none   spans are created, sampled, and dropped.
//
// The provider is not installed globally.  Callers inject it into
// Middleware and must Shutdown it to flush pending spans.

package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/config"
)

// NewProvider builds a TracerProvider for cfg.  Unknown exporters are
// apperr.KindConfig; OTLP client construction failures are apperr.KindIO.
func NewProvider(ctx context.Context, cfg config.Tracing, log *zap.Logger) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}

	switch strings.ToLower(cfg.Exporter) {
	case "log":
		opts = append(opts, sdktrace.WithSyncer(NewLogExporter(log)))
	case "otlp":
		exp, err := newOTLPExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	case "none":
	default:
		return nil, apperr.Config(fmt.Errorf("tracing.exporter: unsupported exporter %q", cfg.Exporter))
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

func newOTLPExporter(ctx context.Context, cfg config.Tracing) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return nil, apperr.Config(fmt.Errorf("tracing.endpoint is required for the otlp exporter"))
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, apperr.IO(fmt.Errorf("create otlp exporter: %w", err))
	}
	return exp, nil
}
