// Package shared holds the response helpers every handler uses so status
// mapping and error bodies stay consistent across features.
package shared

import (
	"encoding/json"
	"net/http"
	"strings"

	dErrors "giftlist/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and writes the
// client-safe message as `{"error": "..."}`.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.HTTPStatus(code), map[string]string{"error": dErrors.MessageOf(err)})
}

// Allow dispatches by HTTP method and answers anything else with 405 plus an
// Allow header listing the supported methods. Routes compose this with the
// session middleware to reproduce the original per-endpoint gating.
func Allow(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	methods := make([]string, 0, len(handlers))
	for m := range handlers {
		methods = append(methods, m)
	}
	allow := strings.Join(methods, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.Method]; ok {
			h(w, r)
			return
		}
		w.Header().Set("Allow", allow)
		WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}
