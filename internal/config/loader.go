// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` from two layers (highest precedence
last):

  1. `<cwd>/config/<environment>.yaml`, where the environment comes from
     APP_ENVIRONMENT or APP_ENV (see env.go).
  2. Environment variables prefixed `APP_`, where `__` maps to “.”
     (e.g., `APP_SERVER__PORT → server.port`).

After merging, string leaves of the form `vault:<mount>/<path>#<key>` are
optionally resolved through a SecretResolver.  The tree is then decoded
into typed sections, checked for required keys, and defaulted.

Nothing is cached.  Two calls with the same inputs return equal values.

Instrumentation
---------------
  • DEBUG spans: file path, env overlay.
  • ERROR spans: read, decode, and validation failures.
  • Logs use the global *sugared* logger (`zap.S()`).  During bootstrap this
    is zap's no-op logger, so the loader stays silent until the caller has
    installed a real one.

Notes
-----
  • `.env` files are loaded by cmd/web before Load runs; the loader itself
    only reads the process environment.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/inventario/internal/apperr"
)

const (
	// Dir is the directory, relative to the working directory, holding one
	// YAML file per environment.
	Dir = "config"

	envPrefix    = "APP_"
	secretPrefix = "vault:"
)

// SecretResolver turns a secret reference (the part after "vault:") into
// its value.
type SecretResolver func(ref string) (string, error)

// Option customises a single Load / FromEnv call.
type Option func(*options)

type options struct {
	secrets SecretResolver
}

// WithSecrets resolves `vault:` string values through r after merging.
func WithSecrets(r SecretResolver) Option {
	return func(o *options) { o.secrets = r }
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load resolves the current environment and loads its configuration.
func Load(opts ...Option) (*Config, error) {
	return FromEnv(CurrentEnvironment(), opts...)
}

// FromEnv loads `config/<env>.yaml` relative to the working directory and
// overlays APP_-prefixed environment variables.
//
// Every failure is classified: a missing working directory is KindIO,
// everything else (unreadable or malformed file, type mismatch, missing
// key, secret lookup) is KindConfig.
func FromEnv(envName Environment, opts ...Option) (*Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	wd, err := os.Getwd()
	if err != nil {
		zap.S().Errorw("config working directory unavailable", "err", err)
		return nil, apperr.IO(err)
	}

	k := koanf.New(".")

	path := filepath.Join(wd, Dir, envName.FileName())
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", path, "err", err)
		return nil, apperr.Config(fmt.Errorf("load %s: %w", path, err))
	}
	zap.S().Debugw("config yaml loaded", "file", path, "environment", envName)

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, apperr.Config(err)
	}

	if o.secrets != nil {
		if err := resolveSecrets(k, o.secrets); err != nil {
			zap.S().Errorw("config secret resolution failed", "err", err)
			return nil, apperr.Config(err)
		}
	}

	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		zap.S().Errorw("config unmarshal failed", "file", path, "err", err)
		return nil, apperr.Config(fmt.Errorf("decode %s: %w", path, err))
	}

	if err := validateDocument(k, &doc); err != nil {
		zap.S().Errorw("config validation failed", "file", path, "err", err)
		return nil, apperr.Config(err)
	}

	cfg := doc.config(k.Exists)
	zap.S().Infow("config loaded",
		"environment", envName,
		"address", cfg.server.Address(),
		"database_driver", cfg.database.Driver,
	)
	return cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// envKey maps APP_SERVER__PORT to server.port.  The environment selector
// variables are not configuration keys and are skipped.
func envKey(s string) string {
	switch s {
	case EnvEnvironment, EnvEnvShort:
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

func resolveSecrets(k *koanf.Koanf, resolve SecretResolver) error {
	for _, key := range k.Keys() {
		s, ok := k.Get(key).(string)
		if !ok || !strings.HasPrefix(s, secretPrefix) {
			continue
		}
		val, err := resolve(strings.TrimPrefix(s, secretPrefix))
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}
