package middleware

import (
	"net/http"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
)

// WriteError maps any error to the standard JSON error envelope, using the
// ServiceError taxonomy's code/HTTP status when present and falling back to
// an opaque internal_error otherwise (spec §7: internals logged, never
// surfaced to the caller verbatim).
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if se := apperr.GetServiceError(err); se != nil {
		WriteErrorResponse(w, r, se.HTTPStatus, string(se.Code), se.Message, se.Details)
		return
	}
	WriteErrorResponse(w, r, http.StatusInternalServerError, string(apperr.ErrCodeInternal), "internal error", nil)
}
