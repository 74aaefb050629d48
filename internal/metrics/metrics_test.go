package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yanizio/inventario/internal/apperr"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/items/{id}", "418"))

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))
	}

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/items/{id}", "418"))
	if after-before != 3 {
		t.Fatalf("counter moved by %v, want 3", after-before)
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/plain", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/plain", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))
	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/plain", "200"))

	if after-before != 1 {
		t.Fatalf("counter moved by %v, want 1", after-before)
	}
}

func TestRecordFailure(t *testing.T) {
	before := testutil.ToFloat64(FailuresTotal.WithLabelValues("cache"))
	RecordFailure(apperr.Cache(errors.New("down")))
	if got := testutil.ToFloat64(FailuresTotal.WithLabelValues("cache")) - before; got != 1 {
		t.Fatalf("cache failures moved by %v, want 1", got)
	}

	before = testutil.ToFloat64(FailuresTotal.WithLabelValues("unclassified"))
	RecordFailure(errors.New("mystery"))
	if got := testutil.ToFloat64(FailuresTotal.WithLabelValues("unclassified")) - before; got != 1 {
		t.Fatalf("unclassified failures moved by %v, want 1", got)
	}
}
