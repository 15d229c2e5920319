package ingest

import (
	"fmt"

	"github.com/askmydata/backend/internal/models"
)

// Registry holds the available loaders.
type Registry struct {
	loaders []Loader
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		loaders: []Loader{
			NewCSVLoader(),
			NewJSONLoader(),
			NewExcelLoader(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a loader. A later loader for the same format takes precedence.
func (r *Registry) Register(l Loader) {
	r.loaders = append(r.loaders, l)
}

// Find returns the loader for a format.
func (r *Registry) Find(format Format) (Loader, error) {
	for i := len(r.loaders) - 1; i >= 0; i-- {
		if r.loaders[i].Format() == format {
			return r.loaders[i], nil
		}
	}
	return nil, &Error{Kind: KindUnsupportedFileType, Format: format,
		Err: fmt.Errorf("%w: %q", ErrUnsupportedFileType, format)}
}

// Load runs the loader for format. On failure the table is empty and the
// error is an *Error. A panicking loader is reported as a parse failure.
func (r *Registry) Load(format Format, data []byte) (table models.Table, warnings []models.ParseWarning, err error) {
	l, err := r.Find(format)
	if err != nil {
		return models.Table{}, nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			table, warnings = models.Table{}, nil
			err = &Error{Kind: KindParseFailure, Format: format, Err: fmt.Errorf("loader panicked: %v", rec)}
		}
	}()

	table, warnings, err = l.Load(data)
	if err != nil {
		return models.Table{}, nil, &Error{Kind: KindParseFailure, Format: format, Err: err}
	}
	if table == nil {
		table = models.Table{}
	}
	if warnings == nil {
		warnings = make([]models.ParseWarning, 0)
	}
	return table, warnings, nil
}

// LoadFile resolves the format from the file name and loads data.
func (r *Registry) LoadFile(name string, data []byte) (models.Table, []models.ParseWarning, error) {
	format, err := FormatFromFilename(name)
	if err != nil {
		return models.Table{}, nil, err
	}
	return r.Load(format, data)
}
