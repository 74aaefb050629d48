// internal/cache/cache.go
//
// Redis connection helper.
//
// Context
// -------
// The service keeps one go-redis client per process.  Open parses the
// configured URL, applies pool and dial settings, and pings once so
// bootstrap fails fast when Redis is unreachable.  The client is safe for
// concurrent use.
//
// Every error leaving this package is classified as apperr.KindCache.
//
// Notes
// -----
//   - URL format: redis://[user:pass@]host:port/db, or rediss:// for TLS.
//   - Oxford commas, two spaces after periods.

package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/config"
)

// Options converts cfg into go-redis options without dialling.
func Options(cfg config.Redis) (*redis.Options, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, apperr.Cache(fmt.Errorf("redis.url: %w", err))
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}
	return opt, nil
}

// Open returns a connected client.  The caller owns Close.
func Open(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	opt, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)
	if err := Ping(ctx, rdb); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Ping is a single health probe.
func Ping(ctx context.Context, rdb *redis.Client) error {
	return apperr.Cache(rdb.Ping(ctx).Err())
}
