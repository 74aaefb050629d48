package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/yanizio/inventario/internal/apperr"
)

// Timeout cancels the request context after d.  A handler still running
// at the deadline is expected to notice ctx.Done() and return; the
// exchange is then reported to fail as http.ErrHandlerTimeout and, when
// nothing was written yet, answered with 504.  d <= 0 disables the limit.
func Timeout(d time.Duration, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}
			err := apperr.HTTP(http.ErrHandlerTimeout)
			fail.report(ctx, err)
			if ww.Status() == 0 {
				WriteError(ww, apperr.HTTPStatus(err), apperr.KindHTTP.String())
			}
		})
	}
}
