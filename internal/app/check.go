package app

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/knadh/koanf/parsers/yaml"

	"github.com/yanizio/inventario/internal/config"
)

const redacted = "xxxxx"

// CheckConfig loads the configuration for the current environment and
// writes a YAML summary to w with credentials masked.  Nothing is dialled
// except Vault, when enabled.
func CheckConfig(ctx context.Context, w io.Writer) error {
	env := config.CurrentEnvironment()
	cfg, err := loadConfig(ctx, env)
	if err != nil {
		return err
	}

	out, err := yaml.Parser().Marshal(summary(env, cfg))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func summary(env config.Environment, cfg *config.Config) map[string]any {
	srv, lg, db, rd, au, tr := cfg.Server(), cfg.Log(), cfg.Database(), cfg.Redis(), cfg.Auth(), cfg.Tracing()
	return map[string]any{
		"environment": env.String(),
		"server": map[string]any{
			"url":              srv.URL(),
			"read_timeout":     srv.ReadTimeout.String(),
			"write_timeout":    srv.WriteTimeout.String(),
			"idle_timeout":     srv.IdleTimeout.String(),
			"request_timeout":  srv.RequestTimeout.String(),
			"shutdown_timeout": srv.ShutdownTimeout.String(),
			"force_https":      srv.ForceHTTPS,
			"rate_limit":       map[string]any{"rps": srv.RateLimit.RPS, "burst": srv.RateLimit.Burst},
		},
		"log": map[string]any{
			"level":     lg.Level,
			"format":    lg.Format,
			"directory": lg.Directory,
			"console":   lg.Console,
		},
		"database": map[string]any{
			"driver":          db.Driver,
			"dsn":             redactDSN(db.Driver, db.DSN),
			"max_open_conns":  db.MaxOpenConns,
			"max_idle_conns":  db.MaxIdleConns,
			"connect_timeout": db.ConnectTimeout.String(),
			"connect_retries": db.ConnectRetries,
			"migrate":         db.Migrate,
		},
		"redis": map[string]any{
			"url":          redactURL(rd.URL),
			"pool_size":    rd.PoolSize,
			"dial_timeout": rd.DialTimeout.String(),
		},
		"auth": map[string]any{
			"issuer":    au.Issuer,
			"secret":    redacted,
			"token_ttl": au.TokenTTL.String(),
		},
		"tracing": map[string]any{
			"exporter":     tr.Exporter,
			"endpoint":     tr.Endpoint,
			"service_name": tr.ServiceName,
			"sample_ratio": tr.SampleRatio,
			"geoip_db":     tr.GeoIPDB,
		},
	}
}

// redactDSN masks the password in a MySQL or URL-style DSN.  Anything it
// cannot parse is masked entirely.
func redactDSN(driver, dsn string) string {
	if strings.EqualFold(driver, "mysql") || strings.EqualFold(driver, "mariadb") {
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return redacted
		}
		if mc.Passwd != "" {
			mc.Passwd = redacted
		}
		return mc.FormatDSN()
	}
	return redactURL(dsn)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return redacted
	}
	return u.Redacted()
}
