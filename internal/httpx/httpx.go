// Package httpx holds the request-context and JSON-response helpers shared
// by the HTTP transport layer (internal/httpapi) and any sub-router it
// mounts (internal/helpchat's tip-callback router). It exists as its own
// package, separate from internal/httpapi, purely to avoid an import cycle:
// internal/httpapi imports internal/helpchat to wire the help-chat service,
// and internal/helpchat's router needs these same context/response helpers,
// so neither package can own them without the other importing back.
package httpx

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const (
	userIDContextKey contextKey = "ppm_user_id"
	emailContextKey  contextKey = "ppm_email"
)

// WithUserID returns a context carrying the authenticated user ID. The JWT
// claim-extraction middleware (spec §6: claims are read without signature
// verification, since the platform's gateway already verified the token)
// sets this before handing the request to downstream handlers.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetUserID returns the authenticated user ID stashed in ctx, or "" if none.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDContextKey).(string)
	return id
}

// WithEmail returns a context carrying the authenticated user's email claim.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailContextKey, email)
}

// GetEmail returns the authenticated user's email stashed in ctx, or "" if none.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(emailContextKey).(string)
	return email
}

// ErrorResponse is the standard JSON error envelope returned by every
// handler and middleware in this core.
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes the standard JSON error response envelope.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	WriteJSON(w, status, ErrorResponse{Code: code, Message: message, Details: details})
}

// ClientIP extracts the best-effort client IP address from the request.
//
// Security model:
//   - If the direct peer is on a private network (typical for ingress/proxy),
//     trust X-Forwarded-For / X-Real-IP.
//   - If the request comes directly from the internet, ignore spoofable
//     forwarded headers and fall back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}

	remoteIP := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remoteIP); err == nil {
		remoteIP = host
	}

	parsedRemote := net.ParseIP(remoteIP)
	trustForwarded := parsedRemote != nil && (parsedRemote.IsPrivate() || parsedRemote.IsLoopback() || parsedRemote.IsLinkLocalUnicast())

	if trustForwarded {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				candidate := strings.TrimSpace(parts[0])
				if host, _, err := net.SplitHostPort(candidate); err == nil {
					candidate = host
				}
				if candidate != "" {
					return candidate
				}
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			if host, _, err := net.SplitHostPort(xri); err == nil {
				xri = host
			}
			if xri != "" {
				return xri
			}
		}
	}

	return remoteIP
}
