package middleware

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/inventario/internal/apperr"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
})

func TestForceHTTPS(t *testing.T) {
	h := ForceHTTPS(true)(ok)

	t.Run("redirects plain http", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://shop.example.com/hello?x=1", nil))
		assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
		assert.Equal(t, "https://shop.example.com/hello?x=1", rec.Header().Get("Location"))
	})

	t.Run("passes tls", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "https://shop.example.com/hello", nil)
		r.TLS = &tls.ConnectionState{}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("passes proxy-terminated tls", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "http://shop.example.com/hello", nil)
		r.Header.Set("X-Forwarded-Proto", "https")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	for _, host := range []string{"localhost:8080", "127.0.0.1:8080", "[::1]:8080"} {
		t.Run("passes "+host, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/hello", nil)
			r.Host = host
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ForceHTTPS(false)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://shop.example.com/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSecurity(t *testing.T) {
	h := Security(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

// failures collects what a middleware reports through its FailFunc.
type failures struct {
	mu   sync.Mutex
	errs []error
}

func (f *failures) record(_ context.Context, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
}

func TestRateLimit(t *testing.T) {
	var got failures
	h := RateLimit(0.001, 2, got.record)(ok)

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	require.Len(t, got.errs, 1)
	assert.ErrorIs(t, got.errs[0], ErrRateLimited)
	assert.True(t, apperr.Is(got.errs[0], apperr.KindHTTP))

	rec := httptest.NewRecorder()
	RateLimit(0, 0, nil)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_NilFailFunc(t *testing.T) {
	h := RateLimit(0.001, 1, nil)(ok)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestTimeout(t *testing.T) {
	var got failures
	h := Timeout(10*time.Millisecond, got.record)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorBody{Error: "Gateway Timeout", Kind: "http"}, body)

	require.Len(t, got.errs, 1)
	assert.ErrorIs(t, got.errs[0], http.ErrHandlerTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, apperr.HTTPStatus(got.errs[0]))
}

func TestTimeout_KeepsWrittenResponse(t *testing.T) {
	var got failures
	h := Timeout(10*time.Millisecond, got.record)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Len(t, got.errs, 1)
}

func TestTimeout_FastHandler(t *testing.T) {
	var got failures
	rec := httptest.NewRecorder()
	Timeout(time.Second, got.record)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, got.errs)

	rec = httptest.NewRecorder()
	Timeout(0, got.record)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRecover(t *testing.T) {
	h := Recover(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorBody{Error: "Internal Server Error", Kind: "unclassified"}, body)
}

func TestRecover_AbortHandler(t *testing.T) {
	h := Recover(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestAccessLog(t *testing.T) {
	rec := httptest.NewRecorder()
	AccessLog(zaptest.NewLogger(t))(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAccessLog_SeesRecoveredPanic(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	h := AccessLog(log)(Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
}
