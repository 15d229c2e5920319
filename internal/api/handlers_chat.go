// handlers_chat.go - Question answering and conversation log handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/askmydata/backend/internal/prompt"
	"github.com/askmydata/backend/internal/session"
)

// ChatHandlerImpl implements the ChatHandler interface
type ChatHandlerImpl struct {
	sessions SessionService
	log      *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(sessions SessionService, log *zap.Logger) ChatHandler {
	return &ChatHandlerImpl{sessions: sessions, log: log}
}

// AskRequest is the body of an ask call.
type AskRequest struct {
	Question string `json:"question"`
}

// HandleAsk answers a question about the session's table. An empty question
// is accepted and ignored.
func (h *ChatHandlerImpl) HandleAsk(c echo.Context) error {
	id := c.Param("id")

	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	entry, err := h.sessions.Ask(c.Request().Context(), id, req.Question)
	if errors.Is(err, session.ErrEmptyQuestion) {
		return c.NoContent(http.StatusNoContent)
	}
	if errors.Is(err, session.ErrNoData) {
		return NewConflictError("Please upload a data file first!")
	}
	if err != nil {
		return fromSessionError(id, err)
	}

	return c.JSON(http.StatusOK, entry)
}

// HandleGetHistory returns the conversation log, oldest first.
func (h *ChatHandlerImpl) HandleGetHistory(c echo.Context) error {
	id := c.Param("id")
	history, err := h.sessions.History(id)
	if err != nil {
		return fromSessionError(id, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}

// HandleClearHistory empties the conversation log.
func (h *ChatHandlerImpl) HandleClearHistory(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.ClearHistory(id); err != nil {
		return fromSessionError(id, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleExamples lists the example questions shown before any upload.
func (h *ChatHandlerImpl) HandleExamples(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"questions":        prompt.ExampleQuestions(),
		"supportedFormats": h.sessions.AllowedExtensions(),
	})
}
