// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version  string
	sessions func() int
}

// NewHealthHandler creates a new health handler. activeSessions may be nil.
func NewHealthHandler(version string, activeSessions func() int) HealthHandler {
	return &HealthHandlerImpl{
		version:  version,
		sessions: activeSessions,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	}
	if h.sessions != nil {
		body["sessions"] = h.sessions()
	}
	return c.JSON(http.StatusOK, body)
}
