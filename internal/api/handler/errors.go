package handler

import (
	"errors"
	"net/http"

	"github.com/zhangir128/UAV/internal/core/domain"
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error      string                  `json:"error"`
	Violations []domain.FieldViolation `json:"violations,omitempty"`
}

// StatusFor maps a domain error to its HTTP status. Unknown errors map to 500.
func StatusFor(err error) int {
	var (
		ve *domain.ValidationError
		re *domain.RejectedError
		de *domain.DecodeError
		ne *domain.NetworkError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRequestNotFound), errors.Is(err, domain.ErrMonitorNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMonitorStopped), errors.Is(err, domain.ErrWorkspaceClosed), errors.As(err, &re):
		return http.StatusConflict
	case errors.As(err, &de), errors.As(err, &ne):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse renders err for the client.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: domain.UserMessage(err)}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Violations = ve.Violations
	}
	return resp
}

// remoteFailure reports whether err came from a remote service rather than
// from the caller. Views absorb such failures into their alert.
func remoteFailure(err error) bool {
	switch StatusFor(err) {
	case http.StatusBadGateway, http.StatusConflict:
		return true
	}
	return false
}
