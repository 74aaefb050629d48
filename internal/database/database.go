// Package database centralises sqlx connection helpers.  Two drivers are
// registered: go-sql-driver/mysql (MySQL, MariaDB) and pgx's database/sql
// adapter (Postgres).
//
// Public entry points:
//
//	Open(ctx, cfg)   – open, tune the pool, ping with retries, migrate.
//	Ping(ctx, db)    – single health probe, used by /healthz.
//
// Every error leaving this package is classified as apperr.KindDatabase or
// apperr.KindMigration.  Callers should Close() the returned *sqlx.DB when
// no longer needed.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/config"
	"github.com/yanizio/inventario/migrations"
)

// DriverName maps the configured driver to a registered database/sql
// driver name.
func DriverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return "pgx", nil
	case "mysql", "mariadb":
		return "mysql", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func dialect(driverName string) goose.Dialect {
	if driverName == "pgx" {
		return goose.DialectPostgres
	}
	return goose.DialectMySQL
}

// Open returns a ready *sqlx.DB for cfg, or an error once the configured
// connect attempts are exhausted.
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	name, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, apperr.Database(err)
	}

	db, err := sqlx.Open(name, cfg.DSN)
	if err != nil {
		return nil, apperr.Database(err)
	}

	if err := prepare(ctx, db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// prepare tunes the pool, waits for the server, and runs migrations when
// enabled.  Split from Open so tests can hand in a sqlmock connection.
func prepare(ctx context.Context, db *sqlx.DB, cfg config.Database) error {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := pingWithRetry(ctx, db, cfg); err != nil {
		return err
	}

	if !cfg.Migrate {
		return nil
	}
	results, err := migrations.Up(ctx, db.DB, dialect(db.DriverName()))
	if err != nil {
		return apperr.Migration(err)
	}
	zap.L().Info("database migrated", zap.Int("applied", len(results)))
	return nil
}

func pingWithRetry(ctx context.Context, db *sqlx.DB, cfg config.Database) error {
	var err error
	for attempt := 0; attempt <= cfg.ConnectRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperr.Database(errors.Join(err, ctx.Err()))
			case <-time.After(cfg.RetryBackoff * time.Duration(attempt)):
			}
		}

		pctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		err = db.PingContext(pctx)
		cancel()
		if err == nil {
			return nil
		}
		zap.L().Warn("database ping failed",
			zap.Int("attempt", attempt+1),
			zap.Int("attempts", cfg.ConnectRetries+1),
			zap.Error(err),
		)
	}
	return apperr.Database(err)
}

// Ping is a single bounded health probe.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return apperr.Database(db.PingContext(ctx))
}
