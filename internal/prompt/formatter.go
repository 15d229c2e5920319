// Package prompt turns a table into the bounded text summary sent to the LLM.
package prompt

import (
	"fmt"
	"strings"

	"github.com/askmydata/backend/internal/models"
)

// DefaultMaxRows is the sample size used when none is configured.
const DefaultMaxRows = 10

// NoDataMessage is the summary of an empty table.
const NoDataMessage = "No data available."

// FormatTable summarises a table: row count, column names and the first
// maxRows records. The output depends only on its inputs.
func FormatTable(table models.Table, maxRows int) string {
	if table.IsEmpty() {
		return NoDataMessage
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	total := table.Len()
	sample := table
	if total > maxRows {
		sample = table[:maxRows]
	}

	var sb strings.Builder
	sb.WriteString("\nDataset Information:\n")
	fmt.Fprintf(&sb, "- Total Rows: %d\n", total)
	fmt.Fprintf(&sb, "- Columns: %s\n", strings.Join(table.Columns(), ", "))
	fmt.Fprintf(&sb, "\nSample Data (first %d rows):\n", len(sample))

	for i, rec := range sample {
		fmt.Fprintf(&sb, "\nRow %d: %s", i+1, rec.String())
	}

	if total > maxRows {
		fmt.Fprintf(&sb, "\n\n... and %d more rows", total-maxRows)
	}

	return sb.String()
}
