package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/askmydata/backend/internal/models"
)

// CSVLoader handles comma-separated files with a header row.
// Every cell is loaded as text.
type CSVLoader struct{}

func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

func (l *CSVLoader) Format() Format {
	return FormatCSV
}

func (l *CSVLoader) Load(data []byte) (models.Table, []models.ParseWarning, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.Table{}, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)

	table := make(models.Table, 0)
	warnings := make([]models.ParseWarning, 0)

	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, err
		}
		line, _ := r.FieldPos(0)

		row, warning := reconcileRow(header, rec, line, true)
		if warning != nil {
			warnings = append(warnings, *warning)
		}
		table = append(table, row)
	}

	return table, warnings, nil
}

// reconcileRow keys cells by header position. Missing cells become null and
// extra cells are dropped. warnShort controls whether padding is reported;
// spreadsheets routinely omit trailing empty cells.
func reconcileRow(header, cells []string, line int, warnShort bool) (models.Record, *models.ParseWarning) {
	var warning *models.ParseWarning
	switch {
	case len(cells) > len(header):
		warning = &models.ParseWarning{
			Line:    line,
			Content: strings.Join(cells, ","),
			Reason:  fmt.Sprintf("row has %d fields, header has %d: extra fields dropped", len(cells), len(header)),
		}
	case len(cells) < len(header) && warnShort:
		warning = &models.ParseWarning{
			Line:    line,
			Content: strings.Join(cells, ","),
			Reason:  fmt.Sprintf("row has %d fields, header has %d: missing fields set to null", len(cells), len(header)),
		}
	}

	fields := make([]models.Field, len(header))
	for i, name := range header {
		v := models.Null()
		if i < len(cells) {
			v = models.Text(cells[i])
		}
		fields[i] = models.Field{Name: name, Value: v}
	}
	return models.NewRecord(fields...), warning
}
