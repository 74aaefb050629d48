// internal/core/state.go
//
// Process-wide application state.
//
// Context
// -------
// State bundles the long-lived handles every request handler may need:
//
//   - Config      immutable configuration.
//   - Log         the installed zap logger.
//   - DB          sqlx pool (MySQL or Postgres).
//   - Cache       go-redis client.
//   - Tokens      HS256 signer / verifier.
//   - Tracer      OpenTelemetry provider feeding the tracing middleware.
//   - RequestInfo UA + GeoIP resolver.
//
// NewState opens them in dependency order and unwinds whatever it already
// opened when a later step fails.  After NewState returns, State is
// read-only and shared across goroutines.
//
// Notes
// -----
// • Close tears down in reverse order and joins every error.
// • Oxford commas, two spaces after periods.
package core

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/auth"
	"github.com/yanizio/inventario/internal/cache"
	"github.com/yanizio/inventario/internal/config"
	"github.com/yanizio/inventario/internal/database"
	"github.com/yanizio/inventario/internal/requestinfo"
	"github.com/yanizio/inventario/internal/tracing"
)

// State is shared by all handlers.
type State struct {
	Config      *config.Config
	Log         *zap.Logger
	DB          *sqlx.DB
	Cache       *redis.Client
	Tokens      *auth.Tokens
	Tracer      *sdktrace.TracerProvider
	RequestInfo *requestinfo.Resolver
}

// NewState opens every dependency described by cfg.
func NewState(ctx context.Context, cfg *config.Config, log *zap.Logger) (s *State, err error) {
	s = &State{
		Config: cfg,
		Log:    log,
		Tokens: auth.NewTokens(cfg.Auth()),
	}
	defer func() {
		if err != nil {
			_ = s.Close(context.WithoutCancel(ctx))
			s = nil
		}
	}()

	if s.Tracer, err = tracing.NewProvider(ctx, cfg.Tracing(), log); err != nil {
		return s, err
	}
	if s.RequestInfo, err = requestinfo.New(cfg.Tracing().GeoIPDB); err != nil {
		return s, err
	}

	if s.DB, err = database.Open(ctx, cfg.Database()); err != nil {
		return s, err
	}
	log.Info("database connected", zap.String("driver", s.DB.DriverName()))

	if s.Cache, err = cache.Open(ctx, cfg.Redis()); err != nil {
		return s, err
	}
	log.Info("cache connected", zap.String("addr", s.Cache.Options().Addr))

	return s, nil
}

// Close releases every handle that was opened, newest first.
func (s *State) Close(ctx context.Context) error {
	var errs []error
	if s.Cache != nil {
		errs = append(errs, apperr.Cache(s.Cache.Close()))
	}
	if s.DB != nil {
		errs = append(errs, apperr.Database(s.DB.Close()))
	}
	if s.RequestInfo != nil {
		errs = append(errs, s.RequestInfo.Close())
	}
	if s.Tracer != nil {
		errs = append(errs, s.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
