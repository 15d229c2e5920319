package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/askmydata/backend/internal/models"
)

// cellKind is the stored type of a spreadsheet cell.
type cellKind int

const (
	// cellUnknown is used when the reader exposes no type (.xls).
	cellUnknown cellKind = iota
	cellText
	cellNumber
	cellBool
	cellError
)

// inferCell types a spreadsheet cell from its stored kind. String cells are
// always text. A numeric cell stays numeric only when its displayed form is
// numeric too; dates, currency and percentages keep the text the
// spreadsheet shows.
func inferCell(c cell) models.Value {
	display := strings.TrimSpace(c.display)
	raw := strings.TrimSpace(c.raw)
	if display == "" && raw == "" {
		return models.Null()
	}
	if c.display == "" {
		c.display = c.raw
	}

	switch c.kind {
	case cellText, cellError:
		return models.Text(c.display)

	case cellBool:
		return models.Bool(raw == "1" || strings.EqualFold(display, "TRUE"))

	case cellNumber:
		f, ok := parseNumber(raw)
		if ok && isFormattedNumber(display) {
			return models.Number(f)
		}
		return models.Text(c.display)
	}

	// Untyped cells: only unambiguous literals are converted.
	switch display {
	case "TRUE":
		return models.Bool(true)
	case "FALSE":
		return models.Bool(false)
	}
	if f, ok := parseNumber(display); ok && !hasLeadingZero(display) {
		return models.Number(f)
	}
	return models.Text(c.display)
}

// parseNumber accepts finite decimals only.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isFormattedNumber reports whether a numeric cell's display text is still a
// plain number once the number format's grouping commas are removed.
func isFormattedNumber(display string) bool {
	_, ok := parseNumber(strings.ReplaceAll(display, ",", ""))
	return ok
}

// hasLeadingZero matches identifiers such as "01234" that must stay text.
func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
