// internal/apperr/classify.go
//
// Automatic conversion of native subsystem errors into the taxonomy.
//
// Classify answers "which subsystem failed?" for any error value.  An
// *Error anywhere in the chain wins; otherwise the chain is matched
// against the concrete error types and sentinels of the libraries this
// service talks to.

package apperr

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

var jwtSentinels = []error{
	jwt.ErrInvalidKey,
	jwt.ErrInvalidKeyType,
	jwt.ErrHashUnavailable,
	jwt.ErrTokenMalformed,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenRequiredClaimMissing,
	jwt.ErrTokenInvalidAudience,
	jwt.ErrTokenExpired,
	jwt.ErrTokenUsedBeforeIssued,
	jwt.ErrTokenInvalidIssuer,
	jwt.ErrTokenInvalidSubject,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenInvalidId,
	jwt.ErrTokenInvalidClaims,
}

var httpSentinels = []error{
	http.ErrServerClosed,
	http.ErrHandlerTimeout,
	http.ErrAbortHandler,
	http.ErrBodyReadAfterClose,
	http.ErrContentLength,
	http.ErrHijacked,
}

// Classify returns the Kind of err and true, or KindUnknown and false
// when err is nil or comes from a subsystem outside the taxonomy.
func Classify(err error) (Kind, bool) {
	if err == nil {
		return KindUnknown, false
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}

	// Relational store.
	var myErr *mysql.MySQLError
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &myErr), errors.As(err, &pgErr),
		errors.Is(err, sql.ErrNoRows), errors.Is(err, sql.ErrConnDone),
		errors.Is(err, sql.ErrTxDone), errors.Is(err, driver.ErrBadConn):
		return KindDatabase, true
	}

	var partial *goose.PartialError
	if errors.As(err, &partial) {
		return KindMigration, true
	}

	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		return KindCache, true
	}

	for _, s := range jwtSentinels {
		if errors.Is(err, s) {
			return KindJWT, true
		}
	}

	var verrs validator.ValidationErrors
	var invalid *validator.InvalidValidationError
	if errors.As(err, &verrs) || errors.As(err, &invalid) {
		return KindConfig, true
	}

	for _, s := range httpSentinels {
		if errors.Is(err, s) {
			return KindHTTP, true
		}
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return KindHTTP, true
	}

	var pathErr *fs.PathError
	var sysErr *os.SyscallError
	var opErr *net.OpError
	switch {
	case errors.As(err, &pathErr), errors.As(err, &sysErr), errors.As(err, &opErr),
		errors.Is(err, os.ErrDeadlineExceeded):
		return KindIO, true
	}

	return KindUnknown, false
}

// HTTPStatus maps err to the status a request handler should answer with.
// Store and cache outages are reported as 503 so load balancers can back
// off; token problems are the caller's fault (401).  Everything else is a
// 500.
func HTTPStatus(err error) int {
	kind, _ := Classify(err)
	switch kind {
	case KindDatabase, KindCache:
		return http.StatusServiceUnavailable
	case KindToken, KindJWT:
		return http.StatusUnauthorized
	case KindHTTP:
		if errors.Is(err, http.ErrHandlerTimeout) {
			return http.StatusGatewayTimeout
		}
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return http.StatusRequestEntityTooLarge
		}
	}
	return http.StatusInternalServerError
}
