// handlers_data.go - Upload and table access handlers
package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/askmydata/backend/internal/models"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// DataHandlerImpl implements the DataHandler interface
type DataHandlerImpl struct {
	sessions SessionService
	log      *zap.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(sessions SessionService, log *zap.Logger) DataHandler {
	return &DataHandlerImpl{sessions: sessions, log: log}
}

// TablePage is one page of the session's records.
type TablePage struct {
	Columns  []string        `json:"columns"`
	Records  []models.Record `json:"records"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// HandleUpload accepts a multipart file and replaces the session's table.
// A rejected file leaves the previous table and conversation in place.
func (h *DataHandlerImpl) HandleUpload(c echo.Context) error {
	id := c.Param("id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewBadRequestError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewBadRequestError("failed to read uploaded file", err)
	}

	snap, err := h.sessions.LoadFile(id, fileHeader.Filename, data)
	if err != nil {
		return fromSessionError(id, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Successfully loaded %s", fileHeader.Filename),
		"session": snap,
	})
}

// HandleGetTable returns a page of records as JSON objects in column order.
func (h *DataHandlerImpl) HandleGetTable(c echo.Context) error {
	id := c.Param("id")
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	table, err := h.sessions.Table(id)
	if err != nil {
		return fromSessionError(id, err)
	}

	// Compare in pages first so (page-1)*pageSize cannot overflow.
	start := table.Len()
	if page-1 <= table.Len()/pageSize {
		start = min((page-1)*pageSize, table.Len())
	}
	end := min(start+pageSize, table.Len())

	return c.JSON(http.StatusOK, TablePage{
		Columns:  table.Columns(),
		Records:  table[start:end],
		Total:    table.Len(),
		Page:     page,
		PageSize: pageSize,
	})
}

// HandleGetTableMsgpack returns the whole table msgpack-encoded. Rows are
// maps, so clients use the columns list for ordering.
func (h *DataHandlerImpl) HandleGetTableMsgpack(c echo.Context) error {
	id := c.Param("id")
	table, err := h.sessions.Table(id)
	if err != nil {
		return fromSessionError(id, err)
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"columns": table.Columns(),
		"rows":    table.Rows(),
		"total":   table.Len(),
	})
	if err != nil {
		h.log.Error("msgpack encoding failed", zap.String("session", id), zap.Error(err))
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetSummary returns the text the model would see for this table.
func (h *DataHandlerImpl) HandleGetSummary(c echo.Context) error {
	id := c.Param("id")
	maxRows := 0
	if raw := c.QueryParam("maxRows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return NewValidationError("maxRows")
		}
		maxRows = n
	}

	summary, err := h.sessions.Summary(id, maxRows)
	if err != nil {
		return fromSessionError(id, err)
	}
	return c.String(http.StatusOK, summary)
}
