// internal/engine/parser.go
package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "csv-chat/internal/common/errors"
)

// answerSchema validates the engine's JSON answer envelope before the
// payload is trusted for rendering.
const answerSchema = `{
  "type": "object",
  "required": ["kind"],
  "properties": {
    "kind": {"type": "string", "enum": ["text", "number", "table", "chart"]},
    "text": {"type": "string"},
    "number": {"type": "number"},
    "table": {
      "type": "object",
      "required": ["columns", "rows"],
      "properties": {
        "columns": {"type": "array", "items": {"type": "string"}, "minItems": 1},
        "rows": {"type": "array", "items": {"type": "array"}}
      }
    },
    "chart": {
      "type": "object",
      "required": ["type", "labels", "values"],
      "properties": {
        "type": {"type": "string", "enum": ["bar", "line", "pie"]},
        "title": {"type": "string"},
        "labels": {"type": "array", "items": {"type": "string"}},
        "values": {"type": "array", "items": {"type": "number"}}
      }
    }
  }
}`

var answerSchemaLoader = gojsonschema.NewStringLoader(answerSchema)

// rawAnswer mirrors the envelope with lenient cell typing; models sometimes
// emit numeric table cells even when told not to.
type rawAnswer struct {
	Kind   string    `json:"kind"`
	Text   string    `json:"text"`
	Number *float64  `json:"number"`
	Table  *rawTable `json:"table"`
	Chart  *Chart    `json:"chart"`
}

type rawTable struct {
	Columns []string            `json:"columns"`
	Rows    [][]json.RawMessage `json:"rows"`
}

// ParseAnswer extracts a Result from the model's answer text.
// Fenced code blocks are stripped first; anything that fails envelope
// validation is an ENGINE_BAD_ANSWER.
func ParseAnswer(answer string) (*Result, error) {
	cleaned := stripFences(answer)

	validation, err := gojsonschema.Validate(answerSchemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, apperrors.NewEngineBadAnswerError(fmt.Sprintf("not valid JSON: %s", err.Error()))
	}
	if !validation.Valid() {
		details := make([]string, 0, len(validation.Errors()))
		for _, e := range validation.Errors() {
			details = append(details, e.String())
		}
		return nil, apperrors.NewEngineBadAnswerError(strings.Join(details, "; "))
	}

	var raw rawAnswer
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, apperrors.NewEngineBadAnswerError(err.Error())
	}

	return normalize(&raw)
}

// normalize enforces kind/payload agreement and coerces table cells to
// strings, mirroring the result-coercion layer of the original UI.
func normalize(raw *rawAnswer) (*Result, error) {
	result := &Result{Kind: ResultKind(raw.Kind)}

	switch result.Kind {
	case KindText:
		if strings.TrimSpace(raw.Text) == "" {
			return nil, apperrors.NewEngineBadAnswerError("kind is text but no text given")
		}
		result.Text = raw.Text

	case KindNumber:
		if raw.Number == nil {
			return nil, apperrors.NewEngineBadAnswerError("kind is number but no number given")
		}
		result.Number = raw.Number

	case KindTable:
		if raw.Table == nil {
			return nil, apperrors.NewEngineBadAnswerError("kind is table but no table given")
		}
		table := &Table{Columns: raw.Table.Columns}
		for _, row := range raw.Table.Rows {
			if len(row) != len(raw.Table.Columns) {
				return nil, apperrors.NewEngineBadAnswerError("table row width does not match columns")
			}
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = coerceCell(cell)
			}
			table.Rows = append(table.Rows, cells)
		}
		result.Table = table

	case KindChart:
		if raw.Chart == nil {
			return nil, apperrors.NewEngineBadAnswerError("kind is chart but no chart given")
		}
		if len(raw.Chart.Labels) != len(raw.Chart.Values) {
			return nil, apperrors.NewEngineBadAnswerError("chart labels and values differ in length")
		}
		result.Chart = raw.Chart

	default:
		return nil, apperrors.NewEngineBadAnswerError(fmt.Sprintf("unknown result kind %q", raw.Kind))
	}

	return result, nil
}

// coerceCell renders a JSON scalar cell as its display string.
func coerceCell(cell json.RawMessage) string {
	var s string
	if err := json.Unmarshal(cell, &s); err == nil {
		return s
	}
	return strings.Trim(string(cell), `"`)
}

// stripFences removes markdown code fences around the JSON body.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
