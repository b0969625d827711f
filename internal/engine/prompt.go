// internal/engine/prompt.go
package engine

import (
	"fmt"
	"strings"

	"csv-chat/internal/dataset"
)

// BuildPrompt generates the system prompt describing the dataset and the
// answer contract. The model sees the header, inferred types, the row
// count, and up to maxRows rows of data, so prompt size stays bounded for
// large files.
func BuildPrompt(ds *dataset.Dataset, maxRows int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`You are a data analyst answering questions about the table %q.

YOUR ROLE:
Answer the user's question using ONLY the table described below. Do not
invent columns or values that are not in the table.

`, ds.Name))

	b.WriteString(fmt.Sprintf("TABLE: %d rows\n\nCOLUMNS:\n", ds.RowCount()))
	for _, c := range ds.Columns {
		b.WriteString(fmt.Sprintf("- %q (%s)\n", c.Name, c.Type))
	}

	rows := ds.SampleRows(maxRows)
	if len(rows) < ds.RowCount() {
		b.WriteString(fmt.Sprintf("\nDATA (first %d of %d rows, CSV):\n", len(rows), ds.RowCount()))
	} else {
		b.WriteString("\nDATA (full table, CSV):\n")
	}
	b.WriteString(strings.Join(ds.ColumnNames(), ","))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	b.WriteString(`
RESPONSE FORMAT (ALWAYS valid JSON, no markdown, no commentary):
{
  "kind": "text|number|table|chart",
  "text": "answer sentence (kind=text)",
  "number": 123.4,
  "table": {"columns": ["..."], "rows": [["..."]]},
  "chart": {"type": "bar|line|pie", "title": "...", "labels": ["..."], "values": [1.0]}
}

RULES:
1. "kind" decides the payload; include ONLY the matching payload field.
2. Questions asking for a single value ("how many", "what is the average")
   use kind "number" when the answer is numeric, otherwise "text".
3. "show", "list", "which rows" questions use kind "table" with string cells.
4. "breakdown", "compare", "by <column>" questions use kind "chart".
5. Respond with valid JSON only.
`)

	return b.String()
}
