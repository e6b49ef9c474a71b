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

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo client error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"echo server error", echo.NewHTTPError(http.StatusInternalServerError, "db exploded"), http.StatusInternalServerError, genericErrorMessage},
		{"shipment not found", fmt.Errorf("ingest: %w", domain.ErrShipmentNotFound), http.StatusNotFound, "shipment not found"},
		{"location not found", domain.ErrLocationNotFound, http.StatusNotFound, "location not found"},
		{"invalid status", fmt.Errorf("update status: %w", domain.ErrInvalidStatus), http.StatusBadRequest, "invalid shipment status"},
		{"dependency", fmt.Errorf("xadd: %w", domain.ErrDependencyUnavailable), http.StatusInternalServerError, genericErrorMessage},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, genericErrorMessage},
		{"user exists", fmt.Errorf("register a@b.io: %w", domain.ErrUserExists), http.StatusConflict, "user already exists"},
		{"invalid role", fmt.Errorf("%w: %q", domain.ErrInvalidRole, "driver"), http.StatusBadRequest, "invalid role"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/tracking/update-location", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.wantMsg {
				t.Errorf("message = %q, want %q", body.Error, tc.wantMsg)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("committed response must not be overwritten, got %d", rec.Code)
	}
}
