package middleware

import (
	"net/http"

	"github.com/Stefan/ppm-saas-sub001/internal/httpx"
)

// ErrorResponse, WriteJSON, WriteErrorResponse, and ClientIP forward to
// internal/httpx, for the same reason internal/httpapi/context.go forwards
// its context helpers there: internal/helpchat's tip-callback router needs
// them and can't import this package back without a cycle.
type ErrorResponse = httpx.ErrorResponse

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) { httpx.WriteJSON(w, status, data) }

// WriteErrorResponse writes the standard JSON error response envelope.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	httpx.WriteErrorResponse(w, r, status, code, message, details)
}

// ClientIP extracts the best-effort client IP address from the request.
func ClientIP(r *http.Request) string { return httpx.ClientIP(r) }
