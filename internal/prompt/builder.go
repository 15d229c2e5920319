package prompt

import (
	"fmt"

	"github.com/askmydata/backend/internal/models"
)

const preamble = "You are a data analyst assistant. Here is the user's dataset:"

const closing = "Please analyze the data and answer the user's question. Be specific and reference the actual data when possible. " +
	"If you need to make calculations or identify patterns, do so based on the provided data sample."

// BuildPrompt joins the instruction preamble, the data summary and the
// user's question. Neither the summary nor the question is altered.
func BuildPrompt(summary, question string) string {
	return fmt.Sprintf("\n%s\n\n%s\n\nUser Question: %s\n\n%s\n", preamble, summary, question, closing)
}

// Builder composes prompts with a fixed sample size.
type Builder struct {
	maxRows int
}

func NewBuilder(maxRows int) *Builder {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Builder{maxRows: maxRows}
}

func (b *Builder) MaxRows() int {
	return b.maxRows
}

// Summary formats the table with the builder's sample size.
func (b *Builder) Summary(table models.Table) string {
	return FormatTable(table, b.maxRows)
}

// Build returns the full prompt for a question about table.
func (b *Builder) Build(table models.Table, question string) string {
	return BuildPrompt(b.Summary(table), question)
}

var exampleQuestions = []string{
	"What are the main trends in this data?",
	"Can you summarize the key insights?",
	"What are the most common values in each column?",
	"Show me the top 5 entries for column X",
	"Are there any interesting patterns?",
	"What can you tell me about this dataset?",
	"How many unique values are in column Y?",
	"What's the relationship between column A and B?",
}

// ExampleQuestions returns suggestions shown before a file is uploaded.
func ExampleQuestions() []string {
	out := make([]string, len(exampleQuestions))
	copy(out, exampleQuestions)
	return out
}
