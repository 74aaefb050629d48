// internal/httpapi/router.go
//
// HTTP surface.
//
// Context
// -------
// New assembles the chi router and its middleware chain, outermost first:
//
//	RequestID → RealIP → AccessLog → metrics → Recover →
//	requestinfo.Enrich → tracing → RateLimit → Security → ForceHTTPS →
//	Timeout
//
// Tracing wraps every layer that can answer on its own (rate limit,
// HTTPS redirect, timeout), so each exchange gets exactly one span.
// Recover sits above tracing so a panic is first recorded on the span and
// then answered with a 500, which AccessLog and metrics above it see.
//
// Routes
// ------
//
//	GET /hello     plain-text greeting
//	GET /healthz   dependency probe (503 when a ping fails)
//	GET /metrics   Prometheus exposition
//
// Handlers return errors instead of writing them.  handle() turns an
// error into a span failure, a metric, a log line, and the JSON error
// body, in that order.  RateLimit and Timeout report through the same
// fail hook.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/cache"
	"github.com/yanizio/inventario/internal/core"
	"github.com/yanizio/inventario/internal/database"
	"github.com/yanizio/inventario/internal/metrics"
	"github.com/yanizio/inventario/internal/middleware"
	"github.com/yanizio/inventario/internal/tracing"
)

// check is one dependency probe run by /healthz.
type check struct {
	name string
	ping func(context.Context) error
}

// API owns the route handlers.
type API struct {
	log    *zap.Logger
	checks []check
}

// handlerFunc is a route handler that reports failure by returning it.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// New returns the fully wired router for s.
func New(s *core.State) http.Handler {
	a := &API{log: s.Log}
	if s.DB != nil {
		db := s.DB
		a.checks = append(a.checks, check{"database", func(ctx context.Context) error { return database.Ping(ctx, db) }})
	}
	if s.Cache != nil {
		rdb := s.Cache
		a.checks = append(a.checks, check{"cache", func(ctx context.Context) error { return cache.Ping(ctx, rdb) }})
	}

	var tp trace.TracerProvider = noop.NewTracerProvider()
	if s.Tracer != nil {
		tp = s.Tracer
	}

	srv := s.Config.Server()
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.AccessLog(s.Log),
		metrics.Middleware,
		middleware.Recover(s.Log),
		s.RequestInfo.Enrich,
		tracing.Middleware(tp, s.RequestInfo),
		middleware.RateLimit(srv.RateLimit.RPS, srv.RateLimit.Burst, a.fail),
		middleware.Security,
		middleware.ForceHTTPS(srv.ForceHTTPS),
		middleware.Timeout(srv.RequestTimeout, a.fail),
	)

	r.Get("/hello", a.handle(a.hello))
	r.Get("/healthz", a.handle(a.healthz))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// handle adapts a handlerFunc to http.HandlerFunc.
func (a *API) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		a.fail(r.Context(), err)

		kind, _ := apperr.Classify(err)
		status := apperr.HTTPStatus(err)
		a.log.Warn("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("kind", kind.String()),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		middleware.WriteError(w, status, kind.String())
	}
}

// fail marks the exchange failed on its span and counts the failure.
func (a *API) fail(ctx context.Context, err error) {
	tracing.Fail(ctx, err)
	metrics.RecordFailure(err)
}
