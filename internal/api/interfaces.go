// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/askmydata/backend/internal/models"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionHandler handles session lifecycle operations
type SessionHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
}

// DataHandler handles uploads and table access
type DataHandler interface {
	HandleUpload(c echo.Context) error
	HandleGetTable(c echo.Context) error
	HandleGetTableMsgpack(c echo.Context) error
	HandleGetSummary(c echo.Context) error
}

// ChatHandler handles questions and the conversation log
type ChatHandler interface {
	HandleAsk(c echo.Context) error
	HandleGetHistory(c echo.Context) error
	HandleClearHistory(c echo.Context) error
	HandleExamples(c echo.Context) error
}

// SessionService defines the session operations the handlers need.
// This allows mocking in tests
type SessionService interface {
	Create() *models.DataSession
	Delete(id string) bool
	Snapshot(id string) (models.SessionSnapshot, error)
	Table(id string) (models.Table, error)
	LoadFile(id, filename string, data []byte) (models.SessionSnapshot, error)
	Summary(id string, maxRows int) (string, error)
	Ask(ctx context.Context, id, question string) (models.ConversationEntry, error)
	History(id string) ([]models.ConversationEntry, error)
	ClearHistory(id string) error
	AllowedExtensions() []string
}
