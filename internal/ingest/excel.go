package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/askmydata/backend/internal/models"
)

var (
	xlsxMagic = []byte("PK\x03\x04")
	xlsMagic  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ExcelLoader reads the first worksheet of an .xlsx or .xls workbook.
// The workbook flavour is detected from the content, not the extension.
type ExcelLoader struct{}

func NewExcelLoader() *ExcelLoader {
	return &ExcelLoader{}
}

func (l *ExcelLoader) Format() Format {
	return FormatExcel
}

func (l *ExcelLoader) Load(data []byte) (models.Table, []models.ParseWarning, error) {
	var (
		rows [][]cell
		err  error
	)
	switch {
	case bytes.HasPrefix(data, xlsxMagic):
		rows, err = readXLSX(data)
	case bytes.HasPrefix(data, xlsMagic):
		rows, err = readXLS(data)
	default:
		return nil, nil, errors.New("file is not an Excel workbook")
	}
	if err != nil {
		return nil, nil, err
	}
	return buildSheetTable(rows)
}

// cell carries the raw stored value, what the spreadsheet displays and the
// stored type.
type cell struct {
	raw     string
	display string
	kind    cellKind
}

func readXLSX(data []byte) ([][]cell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	display, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	rows := make([][]cell, len(display))
	for i, drow := range display {
		var rrow []string
		if i < len(raw) {
			rrow = raw[i]
		}
		n := len(drow)
		if len(rrow) > n {
			n = len(rrow)
		}
		row := make([]cell, n)
		for j := 0; j < n; j++ {
			if j < len(drow) {
				row[j].display = drow[j]
			}
			if j < len(rrow) {
				row[j].raw = rrow[j]
			} else {
				row[j].raw = row[j].display
			}
			if row[j].raw == "" && row[j].display == "" {
				continue
			}
			kind, err := xlsxCellKind(f, sheets[0], j+1, i+1)
			if err != nil {
				return nil, err
			}
			row[j].kind = kind
		}
		rows[i] = row
	}
	return rows, nil
}

// xlsxCellKind maps the cell's stored type. Cells without a type attribute
// hold numbers.
func xlsxCellKind(f *excelize.File, sheet string, col, row int) (cellKind, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return cellUnknown, err
	}
	t, err := f.GetCellType(sheet, name)
	if err != nil {
		return cellUnknown, fmt.Errorf("read cell %s: %w", name, err)
	}
	switch t {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return cellText, nil
	case excelize.CellTypeBool:
		return cellBool, nil
	case excelize.CellTypeError:
		return cellError, nil
	default:
		return cellNumber, nil
	}
}

func readXLS(data []byte) ([][]cell, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no worksheets")
	}

	rows := make([][]cell, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			rows = append(rows, nil)
			continue
		}
		row := make([]cell, r.LastCol())
		for j := r.FirstCol(); j < r.LastCol(); j++ {
			v := r.Col(j)
			row[j] = cell{raw: v, display: v}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildSheetTable uses the first non-empty row as the header. Blank header
// cells are named "Unnamed: <index>" and fully empty rows are skipped.
func buildSheetTable(rows [][]cell) (models.Table, []models.ParseWarning, error) {
	table := make(models.Table, 0)
	warnings := make([]models.ParseWarning, 0)

	var header []string
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		line := i + 1

		if header == nil {
			header = make([]string, len(row))
			for j, c := range row {
				name := strings.TrimSpace(c.display)
				if name == "" {
					name = fmt.Sprintf("Unnamed: %d", j)
				}
				header[j] = name
			}
			header = dedupeColumns(header)
			continue
		}

		if len(row) > len(header) {
			extra := row[len(header):]
			if !isEmptyRow(extra) {
				warnings = append(warnings, models.ParseWarning{
					Line:    line,
					Content: joinDisplay(row),
					Reason:  fmt.Sprintf("row has %d cells, header has %d: extra cells dropped", len(row), len(header)),
				})
			}
		}

		fields := make([]models.Field, len(header))
		for j, name := range header {
			v := models.Null()
			if j < len(row) {
				v = inferCell(row[j])
			}
			fields[j] = models.Field{Name: name, Value: v}
		}
		table = append(table, models.NewRecord(fields...))
	}

	return table, warnings, nil
}

func isEmptyRow(row []cell) bool {
	for _, c := range row {
		if strings.TrimSpace(c.display) != "" || strings.TrimSpace(c.raw) != "" {
			return false
		}
	}
	return true
}

func joinDisplay(row []cell) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = c.display
	}
	return strings.Join(parts, ",")
}

// dedupeColumns renames repeated header names to "name.1", "name.2" so every
// column survives, skipping suffixes that are already taken.
func dedupeColumns(names []string) []string {
	out := make([]string, len(names))
	counts := make(map[string]int, len(names))
	for i, name := range names {
		n := counts[name]
		for n > 0 {
			counts[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
			n = counts[name]
		}
		out[i] = name
		counts[name] = n + 1
	}
	return out
}
