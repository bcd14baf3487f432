package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("access forbidden")
	ErrRequestNotFound  = errors.New("flight request not found")
	ErrMonitorNotFound  = errors.New("monitor not found")
	ErrMonitorStopped   = errors.New("monitor stopped")
	ErrSessionNotFound  = errors.New("session not found")
	ErrWorkspaceClosed  = errors.New("workspace closed")
)

// NetworkError is a transport or HTTP-level failure talking to a remote service.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: remote returned HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError means the remote answered but the body had an unexpected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RejectedError is an explicit (or missing) failure acknowledgement from a remote call.
type RejectedError struct {
	Op     string
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return e.Op + ": rejected by service"
	}
	return fmt.Sprintf("%s: rejected by service: %s", e.Op, e.Reason)
}

// FieldViolation is a single invalid form field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is invalid local input, detected before any remote call.
type ValidationError struct {
	Violations []FieldViolation
}

// NewValidationError builds a ValidationError for one field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Violations: []FieldViolation{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

// UserMessage renders err as text safe to show on the console.
func UserMessage(err error) string {
	var (
		ne *NetworkError
		de *DecodeError
		re *RejectedError
		ve *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &re):
		if re.Reason != "" {
			return "the service refused the operation: " + re.Reason
		}
		return "the service did not confirm the operation"
	case errors.As(err, &de):
		return "the service returned an unexpected response"
	case errors.As(err, &ne):
		if ne.StatusCode != 0 {
			return fmt.Sprintf("the service is unavailable (HTTP %d)", ne.StatusCode)
		}
		return "the service could not be reached"
	case errors.Is(err, ErrNotAuthenticated):
		return "please sign in"
	case errors.Is(err, ErrForbidden):
		return "access forbidden"
	case errors.Is(err, ErrRequestNotFound):
		return "flight request not found"
	case errors.Is(err, ErrMonitorNotFound):
		return "monitor not found"
	case errors.Is(err, ErrMonitorStopped):
		return "monitoring has been stopped"
	case errors.Is(err, ErrWorkspaceClosed):
		return "the session has expired, reload the page"
	default:
		return "unexpected error"
	}
}
