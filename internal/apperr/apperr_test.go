package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilIsNil(t *testing.T) {
	assert.NoError(t, New(KindConfig, nil))
	assert.NoError(t, Database(nil))
}

func TestError_IsTransparent(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5432: connection refused")
	err := Database(cause)

	assert.Equal(t, cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindDatabase, ae.Kind)
	assert.Same(t, cause, ae.Err)
}

func TestNew_DoesNotDoubleWrapSameKind(t *testing.T) {
	err := Config(errors.New("boom"))
	assert.Same(t, err, Config(err))
}

func TestClassify_TaxonomyWinsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load development configuration: %w", Config(errors.New("bad yaml")))

	kind, ok := Classify(err)
	require.True(t, ok)
	assert.Equal(t, KindConfig, kind)
	assert.True(t, Is(err, KindConfig))
	assert.False(t, Is(err, KindIO))
}

func TestClassify_NativeErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"mysql", &mysql.MySQLError{Number: 1146, Message: "table missing"}, KindDatabase},
		{"postgres", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}, KindDatabase},
		{"no rows", fmt.Errorf("lookup: %w", sql.ErrNoRows), KindDatabase},
		{"jwt expired", fmt.Errorf("verify: %w", jwt.ErrTokenExpired), KindJWT},
		{"server closed", http.ErrServerClosed, KindHTTP},
		{"path error", &fs.PathError{Op: "open", Path: "config/x.yaml", Err: fs.ErrNotExist}, KindIO},
		{"token sentinel", ErrToken, KindToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := Classify(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestClassify_Unknown(t *testing.T) {
	kind, ok := Classify(errors.New("something else"))
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, kind)

	_, ok = Classify(nil)
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "database", KindDatabase.String())
	assert.Equal(t, "unclassified", KindUnknown.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestErrToken_Message(t *testing.T) {
	assert.Equal(t, "error occurred when signing or verifying token", ErrToken.Error())
	assert.ErrorIs(t, fmt.Errorf("sign: %w", ErrToken), ErrToken)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Database(errors.New("down"))))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Cache(errors.New("down"))))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(JWT(jwt.ErrTokenMalformed)))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(HTTP(http.ErrHandlerTimeout)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("other")))
}
