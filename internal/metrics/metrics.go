// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// mounting Handler on /metrics is enough to expose them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/inventario/internal/apperr"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Cumulative number of HTTP exchanges, by method, route, and status.",
		}, []string{"method", "route", "status"})

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time from first byte read to handler return.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

	FailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_failures_total",
			Help: "Cumulative number of failed exchanges, by error kind.",
		}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		FailuresTotal,
	)
}

// Handler serves the global registry.
func Handler() http.Handler { return promhttp.Handler() }

// RecordFailure counts one failed exchange under err's kind.
func RecordFailure(err error) {
	kind, _ := apperr.Classify(err)
	FailuresTotal.WithLabelValues(kind.String()).Inc()
}

// Middleware times every exchange and counts it by route pattern.  Routes
// chi could not match are reported as "unmatched" to keep label
// cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
