// Package ingest converts uploaded file bytes into tables.
package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/askmydata/backend/internal/models"
)

// Format is the declared type of an uploaded file.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
)

// DisplayName is the format name used in user-facing messages.
func (f Format) DisplayName() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatJSON:
		return "JSON"
	case FormatExcel:
		return "Excel"
	}
	return string(f)
}

// SupportedExtensions lists the upload extensions accepted, without dots.
var SupportedExtensions = []string{"csv", "json", "xlsx", "xls"}

// ErrUnsupportedFileType is wrapped by errors for files whose extension
// does not map to a loader.
var ErrUnsupportedFileType = errors.New("unsupported file format")

// Loader parses one file format.
type Loader interface {
	// Format returns the format tag handled by this loader.
	Format() Format
	// Load parses data into a table. Warnings describe rows that were
	// reconciled against the header rather than rejected.
	Load(data []byte) (models.Table, []models.ParseWarning, error)
}

// ErrorKind classifies ingestion failures.
type ErrorKind string

const (
	KindUnsupportedFileType ErrorKind = "unsupported_file_type"
	KindParseFailure        ErrorKind = "parse_failure"
)

// Error is returned by Load. Its message is meant to be shown to the user.
type Error struct {
	Kind   ErrorKind
	Format Format
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindUnsupportedFileType {
		return fmt.Sprintf("Unsupported file format: %v", e.Err)
	}
	return fmt.Sprintf("Error loading %s: %v", e.Format.DisplayName(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FormatFromFilename maps a file name's extension to a format tag.
func FormatFromFilename(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "xls":
		return FormatExcel, nil
	}
	if ext == "" {
		return "", &Error{Kind: KindUnsupportedFileType, Err: fmt.Errorf("%w: %q has no extension", ErrUnsupportedFileType, name)}
	}
	return "", &Error{Kind: KindUnsupportedFileType, Err: fmt.Errorf("%w: .%s (expected one of %s)",
		ErrUnsupportedFileType, ext, strings.Join(SupportedExtensions, ", "))}
}

// FormatFromFilenameAllowed is FormatFromFilename restricted to the given
// extensions, compared without dots and case-insensitively. An empty list
// allows every supported extension.
func FormatFromFilenameAllowed(name string, allowed []string) (Format, error) {
	if len(allowed) == 0 {
		return FormatFromFilename(name)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, a := range allowed {
		if ext != "" && ext == strings.ToLower(strings.TrimPrefix(strings.TrimSpace(a), ".")) {
			return FormatFromFilename(name)
		}
	}
	return "", &Error{Kind: KindUnsupportedFileType, Err: fmt.Errorf("%w: %q (allowed: %s)",
		ErrUnsupportedFileType, name, strings.Join(allowed, ", "))}
}

// Load parses data with the loader registered for format in the global registry.
func Load(format Format, data []byte) (models.Table, []models.ParseWarning, error) {
	return globalRegistry.Load(format, data)
}

// LoadFile picks the format from the file name and loads data.
func LoadFile(name string, data []byte) (models.Table, []models.ParseWarning, error) {
	return globalRegistry.LoadFile(name, data)
}
