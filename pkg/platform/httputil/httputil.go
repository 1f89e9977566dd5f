// Package httputil holds small helpers shared by all HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "order-gateway/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the public error envelope.
// Server-side failures (upstream, internal) get a generic message so internal
// detail never reaches the caller.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	message := "internal error"
	switch code {
	case dErrors.CodeUpstream:
		message = "upstream service unavailable"
	case dErrors.CodeInternal:
		// keep the generic message
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			message = de.Message
		}
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{"error": message})
}
