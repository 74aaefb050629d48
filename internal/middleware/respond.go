package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.  The cause is
// logged server-side, never echoed.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteError writes status with an ErrorBody.
func WriteError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: http.StatusText(status), Kind: kind})
}
