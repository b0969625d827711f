// Package dataset holds the in-memory tabular structure loaded from CSV.
//
// A Dataset is created once by the loader and treated as immutable for the
// rest of the session. Cells stay as the strings the file contained; column
// types are inferred at load time so the query engine can describe the
// table without seeing every row.
package dataset

import (
	"strconv"
	"strings"
	"time"
)

// ColumnType classifies a column by the values observed at load time.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeInteger ColumnType = "integer"
	TypeFloat   ColumnType = "float"
	TypeBoolean ColumnType = "boolean"
	TypeDate    ColumnType = "date"
)

// Column is a named, typed column in load order.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Dataset is an ordered sequence of rows under a fixed header.
type Dataset struct {
	Name     string     `json:"name"`
	Columns  []Column   `json:"columns"`
	Rows     [][]string `json:"rows"`
	LoadedAt time.Time  `json:"loadedAt"`
}

// RowCount returns the number of data rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnNames returns the header names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// SampleRows returns up to n rows from the top of the dataset.
func (d *Dataset) SampleRows(n int) [][]string {
	if n <= 0 || n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// dateLayouts are the formats the type sampler recognizes.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-Jan-2006",
}

// inferColumnType classifies a column by sampling its values.
// Majority vote over non-empty cells: a type wins when at least 80% of the
// sampled values parse as it. Ties fall back to string.
func inferColumnType(values []string) ColumnType {
	var ints, floats, bools, dates, nonEmpty int

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonEmpty++

		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			ints++
			floats++ // every integer also parses as float
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			floats++
			continue
		}
		if isBool(v) {
			bools++
			continue
		}
		if isDate(v) {
			dates++
		}
	}

	if nonEmpty == 0 {
		return TypeString
	}

	threshold := (nonEmpty*8 + 9) / 10 // ceil(0.8 * nonEmpty)

	switch {
	case ints >= nonEmpty && ints > 0:
		return TypeInteger
	case floats >= threshold:
		return TypeFloat
	case bools >= threshold:
		return TypeBoolean
	case dates >= threshold:
		return TypeDate
	default:
		return TypeString
	}
}

func isBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

func isDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
