// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from two overlay layers:
//
//   • `config/<environment>.yaml`           – primary static file,
//   • `APP_`-prefixed environment overrides – highest precedence.
//
// Section structs double as decode targets, so their fields are exported
// and tagged.  The aggregate Config keeps them unexported and hands out
// copies, which makes the model read-only once the loader returns it.
//
// Validation is structural only: required keys must be present.  Value
// ranges (port 0, unknown protocol, unknown driver) are the concern of
// the component that consumes the section.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • Zero values are replaced with the defaults below after decoding.
//     Keys where zero means something (no retries, never sample, no
//     timeout) keep an explicit zero from the file or the environment.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"net"
	"strconv"
	"time"
)

//
// Server section
//

// Server holds listener and HTTP tunables.
type Server struct {
	Protocol string `koanf:"protocol" validate:"required"`
	Host     string `koanf:"host"     validate:"required"`
	Port     uint16 `koanf:"port"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	ForceHTTPS bool      `koanf:"force_https"`
	RateLimit  RateLimit `koanf:"rate_limit"`
}

// RateLimit configures the token-bucket limiter.  RPS == 0 disables it.
type RateLimit struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// Address returns host:port, suitable for net.Listen.  IPv6 literals are
// bracketed ("[::1]:8080"), the only form net.Listen and URL() accept.
func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.FormatUint(uint64(s.Port), 10))
}

// URL returns protocol://host:port.
func (s Server) URL() string { return s.Protocol + "://" + s.Address() }

func (s Server) withDefaults(set explicit) Server {
	set.duration("server.read_timeout", &s.ReadTimeout, 10*time.Second)
	set.duration("server.write_timeout", &s.WriteTimeout, 15*time.Second)
	set.duration("server.idle_timeout", &s.IdleTimeout, 60*time.Second)
	set.duration("server.request_timeout", &s.RequestTimeout, 30*time.Second)
	setDuration(&s.ShutdownTimeout, 10*time.Second)
	return s
}

//
// Log section
//

// Log configures the zap logger.  An empty Directory disables the
// rotating file sink; Console tees to stdout regardless of TTY.
type Log struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Directory  string `koanf:"directory"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
	Console    bool   `koanf:"console"`
}

func (l Log) withDefaults(set explicit) Log {
	setString(&l.Level, "info")
	setString(&l.Format, "json")
	setInt(&l.MaxSizeMB, 50)
	set.number("log.max_backups", &l.MaxBackups, 7)
	set.number("log.max_age_days", &l.MaxAgeDays, 14)
	return l
}

//
// Database section
//

// Database holds relational-store connection parameters.  Driver is
// "mysql" or "postgres"; DSN is passed to the driver untouched.
type Database struct {
	Driver string `koanf:"driver" validate:"required"`
	DSN    string `koanf:"dsn"    validate:"required"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectRetries  int           `koanf:"connect_retries"`
	RetryBackoff    time.Duration `koanf:"retry_backoff"`
	Migrate         bool          `koanf:"migrate"`
}

func (d Database) withDefaults(set explicit) Database {
	set.number("database.max_open_conns", &d.MaxOpenConns, 15)
	set.number("database.max_idle_conns", &d.MaxIdleConns, 5)
	set.duration("database.conn_max_lifetime", &d.ConnMaxLifetime, 30*time.Minute)
	setDuration(&d.ConnectTimeout, 5*time.Second)
	set.number("database.connect_retries", &d.ConnectRetries, 2)
	set.duration("database.retry_backoff", &d.RetryBackoff, 500*time.Millisecond)
	return d
}

//
// Redis section
//

// Redis holds cache / broker connection parameters.
type Redis struct {
	URL         string        `koanf:"url" validate:"required"`
	PoolSize    int           `koanf:"pool_size"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

func (r Redis) withDefaults() Redis {
	setDuration(&r.DialTimeout, 5*time.Second)
	return r
}

//
// Auth section
//

// Auth holds token signing and verification parameters.
type Auth struct {
	Secret   string        `koanf:"secret" validate:"required"`
	Issuer   string        `koanf:"issuer" validate:"required"`
	TokenTTL time.Duration `koanf:"token_ttl"`
}

func (a Auth) withDefaults() Auth {
	setDuration(&a.TokenTTL, time.Hour)
	return a
}

//
// Tracing section (optional)
//

// Tracing selects the span exporter.  Exporter is "log", "otlp", or
// "none".  GeoIPDB, when set, points at a GeoLite2-City database used to
// enrich spans with the client's country and city.
type Tracing struct {
	Exporter    string  `koanf:"exporter"`
	Endpoint    string  `koanf:"endpoint"`
	Insecure    bool    `koanf:"insecure"`
	ServiceName string  `koanf:"service_name"`
	SampleRatio float64 `koanf:"sample_ratio"`
	GeoIPDB     string  `koanf:"geoip_db"`
}

func (t Tracing) withDefaults(set explicit) Tracing {
	setString(&t.Exporter, "log")
	setString(&t.ServiceName, "inventario")
	if t.SampleRatio == 0 && !set.has("tracing.sample_ratio") {
		t.SampleRatio = 1
	}
	return t
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load and FromEnv.
// Accessors return copies; no component can mutate it after bootstrap.
type Config struct {
	server   Server
	log      Log
	database Database
	redis    Redis
	auth     Auth
	tracing  Tracing
}

// New assembles a Config from section values and applies defaults.  The
// loader is the normal way in; New serves tests and tooling.
//
// Every zero value is defaulted, since New cannot tell an explicit zero
// from an omitted field.
func New(s Server, l Log, d Database, r Redis, a Auth, t Tracing) *Config {
	return build(nil, s, l, d, r, a, t)
}

func build(set explicit, s Server, l Log, d Database, r Redis, a Auth, t Tracing) *Config {
	return &Config{
		server:   s.withDefaults(set),
		log:      l.withDefaults(set),
		database: d.withDefaults(set),
		redis:    r.withDefaults(),
		auth:     a.withDefaults(),
		tracing:  t.withDefaults(set),
	}
}

func (c *Config) Server() Server     { return c.server }
func (c *Config) Log() Log           { return c.log }
func (c *Config) Database() Database { return c.database }
func (c *Config) Redis() Redis       { return c.redis }
func (c *Config) Auth() Auth         { return c.auth }
func (c *Config) Tracing() Tracing   { return c.tracing }

//
// document is the decode target.  Pointer sections let validation tell a
// missing section from an empty one.
//

type document struct {
	Server   *Server   `koanf:"server"   validate:"required"`
	Log      *Log      `koanf:"log"      validate:"required"`
	Database *Database `koanf:"database" validate:"required"`
	Redis    *Redis    `koanf:"redis"    validate:"required"`
	Auth     *Auth     `koanf:"auth"     validate:"required"`
	Tracing  *Tracing  `koanf:"tracing"`
}

// config builds the aggregate.  set reports the dotted keys present in the
// merged tree.
func (d *document) config(set explicit) *Config {
	var t Tracing
	if d.Tracing != nil {
		t = *d.Tracing
	}
	return build(set, *d.Server, *d.Log, *d.Database, *d.Redis, *d.Auth, t)
}

// explicit reports whether a dotted key was set in the file or the
// environment.  A nil explicit treats every key as omitted.
type explicit func(key string) bool

func (e explicit) has(key string) bool { return e != nil && e(key) }

func (e explicit) duration(key string, p *time.Duration, def time.Duration) {
	if !e.has(key) {
		setDuration(p, def)
	}
}

func (e explicit) number(key string, p *int, def int) {
	if !e.has(key) {
		setInt(p, def)
	}
}

func setDuration(p *time.Duration, def time.Duration) {
	if *p == 0 {
		*p = def
	}
}

func setInt(p *int, def int) {
	if *p == 0 {
		*p = def
	}
}

func setString(p *string, def string) {
	if *p == "" {
		*p = def
	}
}
