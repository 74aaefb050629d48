// internal/tracing/middleware.go
//
// Request-tracing middleware.
//
// Context
// -------
// Every exchange gets exactly one server span with this lifecycle:
//
//	start      span opened, request attributes set, `request.started`
//	handler    downstream runs with the span and an outcome slot in ctx
//	terminal   `request.completed` (no failure) or `request.failed`
//	end        span renamed to "METHOD /route/{pattern}" and ended
//
// Handlers report failures with Fail(ctx, err).  A downstream panic also
// counts as a failure; it is recorded and then re-raised so the recovery
// middleware above can answer the client.
//
// The middleware never writes to the response.
//
// Notes
// -----
//   - Incoming W3C traceparent / baggage headers are honoured.
//   - error.kind carries the apperr kind name, or "unclassified".
//   - Oxford commas, two spaces after periods.

package tracing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/middleware"
	"github.com/yanizio/inventario/internal/requestinfo"
)

// Span events.
const (
	EventStarted   = "request.started"
	EventCompleted = "request.completed"
	EventFailed    = "request.failed"
)

// Span attribute keys.
const (
	AttrErrorKind  = attribute.Key("error.kind")
	AttrStatusCode = attribute.Key("http.response.status_code")
	AttrRoute      = attribute.Key("http.route")
)

const instrumentationName = "github.com/yanizio/inventario/internal/tracing"

var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Middleware returns a chi-compatible middleware that traces every
// exchange with a tracer from tp.  info may be nil; request metadata
// already attached by requestinfo.Enrich is reused.
func Middleware(tp trace.TracerProvider, info *requestinfo.Resolver) func(http.Handler) http.Handler {
	tracer := tp.Tracer(instrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ri := requestinfo.FromContext(ctx)
			if ri == nil {
				ri = info.Parse(r)
				ctx = requestinfo.NewContext(ctx, ri)
			}

			ctx, span := tracer.Start(ctx, "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttributes(r, ri)...),
			)
			span.AddEvent(EventStarted)

			out := &outcome{}
			ctx = context.WithValue(ctx, outcomeKey{}, out)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				rec := recover()
				if rec != nil {
					out.set(panicError(rec))
				}
				finish(span, r, ww.Status(), out.get())
				span.End()
				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

// finish emits the single terminal event.
func finish(span trace.Span, r *http.Request, status int, err error) {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			span.SetName(r.Method + " " + pattern)
			span.SetAttributes(AttrRoute.String(pattern))
		}
	}
	if status != 0 {
		span.SetAttributes(AttrStatusCode.Int(status))
	}

	if err == nil {
		span.AddEvent(EventCompleted)
		return
	}

	kind, _ := apperr.Classify(err)
	span.SetAttributes(AttrErrorKind.String(kind.String()))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent(EventFailed, trace.WithAttributes(AttrErrorKind.String(kind.String())))
}

func requestAttributes(r *http.Request, ri *requestinfo.Info) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("url.path", r.URL.Path),
		attribute.String("url.scheme", scheme),
		attribute.String("server.address", r.Host),
		attribute.String("user_agent.original", r.UserAgent()),
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		attrs = append(attrs, attribute.String("http.request.id", id))
	}
	if ri != nil {
		if ri.Geo.IP != nil {
			attrs = append(attrs, attribute.String("client.address", ri.Geo.IP.String()))
		}
		if ri.Geo.CountryISO != "" {
			attrs = append(attrs, attribute.String("client.geo.country_iso_code", ri.Geo.CountryISO))
		}
		if ri.Geo.City != "" {
			attrs = append(attrs, attribute.String("client.geo.locality.name", ri.Geo.City))
		}
		attrs = append(attrs,
			attribute.String("user_agent.name", ri.UA.Browser),
			attribute.Bool("user_agent.bot", ri.UA.IsBot),
		)
	}
	return attrs
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}
