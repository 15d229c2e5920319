package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/askmydata/backend/internal/ingest"
	"github.com/askmydata/backend/internal/session"
)

func TestFromSessionError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", session.ErrSessionNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"no data", session.ErrNoData, http.StatusConflict, "CONFLICT"},
		{"no records", session.ErrNoRecords, http.StatusUnprocessableEntity, "NO_RECORDS"},
		{
			"unsupported type",
			&ingest.Error{Kind: ingest.KindUnsupportedFileType, Err: ingest.ErrUnsupportedFileType},
			http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE",
		},
		{
			"wrapped parse failure",
			fmt.Errorf("load: %w", &ingest.Error{Kind: ingest.KindParseFailure, Format: ingest.FormatCSV, Err: errors.New("bad quote")}),
			http.StatusUnprocessableEntity, "PARSE_FAILURE",
		},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := fromSessionError("abc", tt.err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestParseFailureMessageIsUserFacing(t *testing.T) {
	err := &ingest.Error{Kind: ingest.KindParseFailure, Format: ingest.FormatCSV, Err: errors.New("bad quote")}
	assert.Equal(t, "Error loading CSV: bad quote", fromSessionError("x", err).Message)
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		err      error
		devMode  bool
		status   int
		contains string
		excludes string
	}{
		{"api error", NewConflictError("busy"), true, http.StatusConflict, `"code":"CONFLICT"`, ""},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), true, http.StatusMethodNotAllowed, `"code":"HTTP_ERROR"`, ""},
		{"unknown in development", errors.New("secret detail"), true, http.StatusInternalServerError, "secret detail", ""},
		{"unknown in production", errors.New("secret detail"), false, http.StatusInternalServerError, "UNKNOWN_ERROR", "secret detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetDevelopmentMode(tt.devMode)
			defer SetDevelopmentMode(true)

			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			if tt.excludes != "" {
				assert.NotContains(t, rec.Body.String(), tt.excludes)
			}
		})
	}
}
