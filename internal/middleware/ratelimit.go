package middleware

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/yanizio/inventario/internal/apperr"
)

// ErrRateLimited is reported for requests the limiter rejects.
var ErrRateLimited = errors.New("rate limit exceeded")

// FailFunc records a failure against the exchange carried by ctx.  The
// router passes one that feeds tracing and metrics; nil records nothing.
type FailFunc func(ctx context.Context, err error)

func (f FailFunc) report(ctx context.Context, err error) {
	if f != nil {
		f(ctx, err)
	}
}

// RateLimit applies one process-wide token bucket.  rps <= 0 disables
// limiting; burst < 1 is raised to 1.  Rejected requests are reported to
// fail as apperr.KindHTTP and get 429 with the standard JSON error body.
func RateLimit(rps float64, burst int, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(rps), burst)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}
			fail.report(r.Context(), apperr.HTTP(ErrRateLimited))
			WriteError(w, http.StatusTooManyRequests, apperr.KindHTTP.String())
		})
	}
}
