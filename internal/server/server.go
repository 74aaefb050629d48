// internal/server/server.go
//
// HTTP server helper with robust timeouts and graceful shutdown.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers (10 s default)
//   • WriteTimeout  – cap total response time (15 s default)
//   • IdleTimeout   – close keep-alives on idle clients (60 s default)
//
// All three come from the `server` configuration section.  Serve runs the
// listener until its context is cancelled, then drains in-flight requests
// for at most the configured shutdown grace period.
//

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/config"
)

// New constructs an *http.Server for cfg.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          zap.NewStdLog(zap.L().Named("http")),
	}
}

// Listen binds cfg.Address().  Failures are apperr.KindIO.
func Listen(cfg config.Server) (net.Listener, error) {
	ln, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return nil, apperr.IO(err)
	}
	return ln, nil
}

// Serve accepts connections on ln until ctx is cancelled or the server
// fails, then shuts down gracefully.  A clean shutdown returns nil; serve
// and shutdown failures are apperr.KindHTTP.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperr.HTTP(err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down", zap.Duration("grace", grace))

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
		defer cancel()
		return apperr.HTTP(srv.Shutdown(sctx))
	})

	return g.Wait()
}
