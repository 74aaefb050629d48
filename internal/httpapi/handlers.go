package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const pingTimeout = 2 * time.Second

func (a *API) hello(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte("Hello World!"))
	return err
}

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthz pings every dependency.  Any failure is returned so the error
// path answers 503 with the failing kind.
func (a *API) healthz(w http.ResponseWriter, r *http.Request) error {
	body := healthBody{Status: "ok", Checks: make(map[string]string, len(a.checks))}

	var errs []error
	for _, c := range a.checks {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		err := c.ping(ctx)
		cancel()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		body.Checks[c.name] = "ok"
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(body)
}
