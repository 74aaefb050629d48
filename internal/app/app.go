// internal/app/app.go
//
// Application bootstrap.
//
// Request life-cycle
// ------------------
//
//  1. Resolve the environment (APP_ENVIRONMENT → APP_ENV → development).
//
//  2. When VAULT_ADDR is set, start a Vault client so `vault:` values in
//     configuration resolve during load.
//
//  3. Load and validate configuration.
//
//  4. Install the global logger.
//
//  5. Open shared state: tracer, request-info resolver, tokens, database
//     (plus migrations), and cache.
//
//  6. Bind the listener, log the public URL, and serve until ctx is
//     cancelled.  Shutdown drains in-flight requests, then closes state.
//
// Every error returned from here is already classified.
package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/config"
	"github.com/yanizio/inventario/internal/core"
	"github.com/yanizio/inventario/internal/httpapi"
	"github.com/yanizio/inventario/internal/logger"
	"github.com/yanizio/inventario/internal/server"
	"github.com/yanizio/inventario/internal/vault"
)

// Options carries process facts the bootstrap cannot discover itself.
type Options struct {
	// TTY tees logs to a colourised console when true.
	TTY bool
}

// Run boots the service and blocks until ctx is cancelled or the server
// fails.
func Run(ctx context.Context, opts Options) (err error) {
	env := config.CurrentEnvironment()

	cfg, err := loadConfig(ctx, env)
	if err != nil {
		return err
	}

	log, err := logger.Init(cfg.Log(), opts.TTY)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded", zap.Stringer("environment", env))

	state, err := core.NewState(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, state.Close(context.WithoutCancel(ctx)))
	}()

	ln, err := server.Listen(cfg.Server())
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server(), httpapi.New(state))
	log.Info("listening",
		zap.String("url", cfg.Server().URL()),
		zap.Stringer("bound", ln.Addr()),
	)
	return server.Serve(ctx, srv, ln, cfg.Server().ShutdownTimeout)
}

// loadConfig wires the Vault resolver in when the environment asks for it.
func loadConfig(ctx context.Context, env config.Environment) (*config.Config, error) {
	var opts []config.Option
	if vault.Enabled() {
		vc, err := vault.New(ctx, zap.L())
		if err != nil {
			return nil, apperr.Config(err)
		}
		opts = append(opts, config.WithSecrets(vc.Resolver(ctx, 0)))
	}
	return config.FromEnv(env, opts...)
}
