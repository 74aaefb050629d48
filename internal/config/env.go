// internal/config/env.go
//
// Deployment environment resolution.
//
// The active environment is read once at startup from APP_ENVIRONMENT
// (preferred) or APP_ENV, and only selects which `config/<env>.yaml` file
// the loader reads.  Unknown names are kept verbatim (lower-cased) so an
// operator can ship `config/staging.yaml` without a code change.

package config

import (
	"os"
	"strings"
)

// Environment is the named deployment context.  Development, Production,
// and Testing are the known values; any other value is an "other"
// environment identified by its name.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Testing     Environment = "testing"
)

// Environment variables consulted by CurrentEnvironment, in order.
const (
	EnvEnvironment = "APP_ENVIRONMENT"
	EnvEnvShort    = "APP_ENV"
)

// ParseEnvironment matches s case-insensitively against the known names
// and their short aliases.  Anything else is returned lower-cased.
func ParseEnvironment(s string) Environment {
	switch name := strings.ToLower(s); name {
	case "development", "dev":
		return Development
	case "production", "prod":
		return Production
	case "testing", "test":
		return Testing
	default:
		return Environment(name)
	}
}

// CurrentEnvironment resolves the process environment.  It never fails:
// with neither variable set (or both blank) it returns Development.
func CurrentEnvironment() Environment {
	for _, key := range []string{EnvEnvironment, EnvEnvShort} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return ParseEnvironment(v)
		}
	}
	return Development
}

// IsOther reports whether e is not one of the three known environments.
func (e Environment) IsOther() bool {
	switch e {
	case Development, Production, Testing:
		return false
	}
	return true
}

// FileName is the configuration file selected by e.
func (e Environment) FileName() string { return string(e) + ".yaml" }

func (e Environment) String() string { return string(e) }
