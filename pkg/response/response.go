// Package response writes HTTP responses for handlers that work on a raw
// http.ResponseWriter. Resource payloads go out as bare JSON; errors raised
// outside a handler (panics, rate limits, health) use a small envelope.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// JSON writes v as the whole response body.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Text writes a plain-text body.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	fmt.Fprint(w, body) //nolint:errcheck
}

// Error sends a JSON error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// InternalError sends a 500 without leaking the cause.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Internal Server Error")
}

// Unauthorized sends the plain-text 401 used for order denials.
func Unauthorized(w http.ResponseWriter) {
	Text(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends the plain-text 403 used for admin-only denials.
func Forbidden(w http.ResponseWriter) {
	Text(w, http.StatusForbidden, "Access denied")
}
