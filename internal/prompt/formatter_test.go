package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmydata/backend/internal/models"
)

func makeTable(n int) models.Table {
	table := make(models.Table, n)
	for i := range table {
		table[i] = models.NewRecord(
			models.Field{Name: "id", Value: models.Number(float64(i + 1))},
			models.Field{Name: "name", Value: models.Text(fmt.Sprintf("item-%d", i+1))},
		)
	}
	return table
}

func TestFormatTable_SmallTable(t *testing.T) {
	table := models.Table{
		models.NewRecord(models.Field{Name: "a", Value: models.Text("1")}, models.Field{Name: "b", Value: models.Text("2")}),
		models.NewRecord(models.Field{Name: "a", Value: models.Text("3")}, models.Field{Name: "b", Value: models.Text("4")}),
	}

	out := FormatTable(table, 10)

	want := "\nDataset Information:\n" +
		"- Total Rows: 2\n" +
		"- Columns: a, b\n" +
		"\nSample Data (first 2 rows):\n" +
		"\nRow 1: {\"a\": \"1\", \"b\": \"2\"}" +
		"\nRow 2: {\"a\": \"3\", \"b\": \"4\"}"
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "more rows")
}

func TestFormatTable_TrailingNote(t *testing.T) {
	tests := []struct {
		rows     int
		maxRows  int
		wantNote string
	}{
		{rows: 10, maxRows: 10, wantNote: ""},
		{rows: 11, maxRows: 10, wantNote: "... and 1 more rows"},
		{rows: 25, maxRows: 10, wantNote: "... and 15 more rows"},
		{rows: 5, maxRows: 2, wantNote: "... and 3 more rows"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_rows_max_%d", tt.rows, tt.maxRows), func(t *testing.T) {
			out := FormatTable(makeTable(tt.rows), tt.maxRows)
			if tt.wantNote == "" {
				assert.NotContains(t, out, "more rows")
				return
			}
			assert.True(t, strings.HasSuffix(out, "\n\n"+tt.wantNote), out)

			shown := tt.maxRows
			assert.Contains(t, out, fmt.Sprintf("Sample Data (first %d rows):", shown))
			assert.Contains(t, out, fmt.Sprintf("Row %d:", shown))
			assert.NotContains(t, out, fmt.Sprintf("Row %d:", shown+1))
		})
	}
}

func TestFormatTable_EmptyTable(t *testing.T) {
	for _, maxRows := range []int{-1, 0, 1, 10, 1000} {
		assert.Equal(t, NoDataMessage, FormatTable(models.Table{}, maxRows))
		assert.Equal(t, NoDataMessage, FormatTable(nil, maxRows))
	}
}

func TestFormatTable_Deterministic(t *testing.T) {
	table := makeTable(30)
	first := FormatTable(table, 7)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, FormatTable(table, 7))
	}
}

func TestFormatTable_DefaultMaxRows(t *testing.T) {
	out := FormatTable(makeTable(12), 0)
	assert.Contains(t, out, "Sample Data (first 10 rows):")
	assert.Contains(t, out, "... and 2 more rows")
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(0)
	assert.Equal(t, DefaultMaxRows, b.MaxRows())

	question := "Which item has the <highest> id?"
	p := b.Build(makeTable(3), question)

	assert.True(t, strings.HasPrefix(p, "\nYou are a data analyst assistant."))
	assert.Contains(t, p, "- Total Rows: 3")
	assert.Contains(t, p, "User Question: "+question+"\n")
	assert.Contains(t, p, "Please analyze the data")
}

func TestExampleQuestions_ReturnsCopy(t *testing.T) {
	qs := ExampleQuestions()
	require.NotEmpty(t, qs)
	qs[0] = "changed"
	assert.NotEqual(t, "changed", ExampleQuestions()[0])
}
