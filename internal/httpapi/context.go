package middleware

import (
	"context"

	"github.com/Stefan/ppm-saas-sub001/internal/httpx"
)

// WithUserID, GetUserID, WithEmail, and GetEmail forward to internal/httpx,
// which owns these context helpers so internal/helpchat's tip-callback
// router can use them too without importing this package back (this
// package imports internal/helpchat to wire the help-chat service, so the
// helpers can't live here without creating a cycle).
func WithUserID(ctx context.Context, userID string) context.Context { return httpx.WithUserID(ctx, userID) }

// GetUserID returns the authenticated user ID stashed in ctx, or "" if none.
func GetUserID(ctx context.Context) string { return httpx.GetUserID(ctx) }

// WithEmail returns a context carrying the authenticated user's email claim.
func WithEmail(ctx context.Context, email string) context.Context { return httpx.WithEmail(ctx, email) }

// GetEmail returns the authenticated user's email stashed in ctx, or "" if none.
func GetEmail(ctx context.Context) string { return httpx.GetEmail(ctx) }
