// internal/apperr/apperr.go
//
// Process-wide error taxonomy.
//
// Context
// -------
// Every fallible subsystem (HTTP layer, configuration, file system, log
// setup, relational store, migrations, cache, tokens) reports failures as
// an *Error carrying one Kind and the original cause.  The wrapper is
// transparent: Error() returns the cause's message unchanged and Unwrap()
// exposes the cause, so errors.Is / errors.As keep working against the
// native error.
//
// Code that only holds a native error can still classify it through
// Classify (see classify.go).
//
// Notes
// -----
//   - Kinds are a closed set.  Add one only together with the subsystem
//     that produces it.
//   - Oxford commas, two spaces after periods.
package apperr

import "fmt"

// Kind names the subsystem a failure originated in.
type Kind int

const (
	KindUnknown Kind = iota
	KindHTTP
	KindConfig
	KindIO
	KindLogDirective
	KindLogEnvFilter
	KindLogFromEnv
	KindLogInit
	KindDatabase
	KindMigration
	KindCache
	KindToken
	KindJWT
)

var kindNames = [...]string{
	KindUnknown:      "unclassified",
	KindHTTP:         "http",
	KindConfig:       "config",
	KindIO:           "io",
	KindLogDirective: "log_directive",
	KindLogEnvFilter: "log_env_filter",
	KindLogFromEnv:   "log_from_env",
	KindLogInit:      "log_init",
	KindDatabase:     "database",
	KindMigration:    "migration",
	KindCache:        "cache",
	KindToken:        "token",
	KindJWT:          "jwt",
}

// String returns the stable, log-friendly name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is a classified failure.  Err is the original cause and is never
// summarised or rewritten.
type Error struct {
	Kind Kind
	Err  error
}

// ErrToken is reported when a token could not be signed or verified and
// no more specific cause is available.
var ErrToken = &Error{Kind: KindToken}

func (e *Error) Error() string {
	if e.Err == nil {
		if e.Kind == KindToken {
			return "error occurred when signing or verifying token"
		}
		return e.Kind.String() + " error"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New classifies err as kind.  A nil err yields nil so call sites can wrap
// unconditionally.  An err that already carries kind is returned as is.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok && ae.Kind == kind {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

func HTTP(err error) error         { return New(KindHTTP, err) }
func Config(err error) error       { return New(KindConfig, err) }
func IO(err error) error           { return New(KindIO, err) }
func LogDirective(err error) error { return New(KindLogDirective, err) }
func LogEnvFilter(err error) error { return New(KindLogEnvFilter, err) }
func LogFromEnv(err error) error   { return New(KindLogFromEnv, err) }
func LogInit(err error) error      { return New(KindLogInit, err) }
func Database(err error) error     { return New(KindDatabase, err) }
func Migration(err error) error    { return New(KindMigration, err) }
func Cache(err error) error        { return New(KindCache, err) }
func JWT(err error) error          { return New(KindJWT, err) }

// Is reports whether err classifies as kind.
func Is(err error, kind Kind) bool {
	k, ok := Classify(err)
	return ok && k == kind
}
