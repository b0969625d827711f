// Package engine is the boundary to the external natural-language query
// engine. It is the only package that calls the hosted LLM API.
//
// The engine never computes answers itself: it describes the dataset to the
// model, forwards the user's question, and normalizes whatever comes back
// into a single Result the UI can render. Generated query logic is treated
// as correct input rather than audited; that trust boundary is deliberate.
package engine

import (
	"context"

	"csv-chat/internal/dataset"
)

// ResultKind tells the UI how to render a Result.
type ResultKind string

const (
	KindText   ResultKind = "text"
	KindNumber ResultKind = "number"
	KindTable  ResultKind = "table"
	KindChart  ResultKind = "chart"
)

// Result is the normalized answer returned by the external engine.
// Exactly one payload field matching Kind is populated.
type Result struct {
	Kind   ResultKind `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Number *float64   `json:"number,omitempty"`
	Table  *Table     `json:"table,omitempty"`
	Chart  *Chart     `json:"chart,omitempty"`
}

// Table is a derived table answer.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Chart is a render-ready chart answer.
type Chart struct {
	Type   string    `json:"type"` // bar, line, pie
	Title  string    `json:"title,omitempty"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Engine answers a natural-language question about a dataset.
// Implementations: OpenAI-compatible chat completions (v1).
type Engine interface {
	Ask(ctx context.Context, ds *dataset.Dataset, question string) (*Result, error)
}
