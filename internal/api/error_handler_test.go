package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", domain.NewValidationError("email", "email is required"), http.StatusUnprocessableEntity, "email is required"},
		{"not authenticated", domain.ErrNotAuthenticated, http.StatusUnauthorized, "please sign in"},
		{"forbidden", fmt.Errorf("approve: %w", domain.ErrForbidden), http.StatusForbidden, "access forbidden"},
		{"request not found", domain.ErrRequestNotFound, http.StatusNotFound, "flight request not found"},
		{"monitor not found", domain.ErrMonitorNotFound, http.StatusNotFound, "monitor not found"},
		{"monitor stopped", domain.ErrMonitorStopped, http.StatusConflict, "monitoring has been stopped"},
		{"workspace closed", domain.ErrWorkspaceClosed, http.StatusConflict, "the session has expired, reload the page"},
		{"rejected", &domain.RejectedError{Op: "control.move_to"}, http.StatusConflict, "the service did not confirm the operation"},
		{"decode", &domain.DecodeError{Op: "registry.list", Err: errors.New("eof")}, http.StatusBadGateway, "the service returned an unexpected response"},
		{"network", &domain.NetworkError{Op: "registry.list", StatusCode: 503}, http.StatusBadGateway, "the service is unavailable (HTTP 503)"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid droneId"), http.StatusBadRequest, "invalid droneId"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/x", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["error"] != tc.wantMsg {
				t.Fatalf("expected %q, got %v", tc.wantMsg, body["error"])
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationViolations(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/zones", nil), rec)

	err := &domain.ValidationError{Violations: []domain.FieldViolation{
		{Field: "name", Message: "name is required"},
		{Field: "radius", Message: "radius must be greater than 0"},
	}}
	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body struct {
		Violations []domain.FieldViolation `json:"violations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Violations) != 2 || body.Violations[1].Field != "radius" {
		t.Fatalf("unexpected violations %+v", body.Violations)
	}
}
