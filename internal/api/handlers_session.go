// handlers_session.go - Session lifecycle handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionHandlerImpl implements the SessionHandler interface
type SessionHandlerImpl struct {
	sessions SessionService
	log      *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionService, log *zap.Logger) SessionHandler {
	return &SessionHandlerImpl{sessions: sessions, log: log}
}

// HandleCreateSession starts an empty session.
func (h *SessionHandlerImpl) HandleCreateSession(c echo.Context) error {
	s := h.sessions.Create()
	snap, err := h.sessions.Snapshot(s.ID)
	if err != nil {
		return fromSessionError(s.ID, err)
	}
	return c.JSON(http.StatusCreated, snap)
}

// HandleGetSession returns the session state without the table rows.
func (h *SessionHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("id")
	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		return fromSessionError(id, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleDeleteSession ends a session and drops its data.
func (h *SessionHandlerImpl) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.Delete(id) {
		return NewNotFoundError("session", id)
	}
	h.log.Info("session ended by client", zap.String("session", id))
	return c.NoContent(http.StatusNoContent)
}
