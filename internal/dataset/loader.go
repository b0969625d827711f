// internal/dataset/loader.go
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "csv-chat/internal/common/errors"
)

// typeSampleSize caps how many rows the type sampler inspects.
const typeSampleSize = 1000

// Load reads a CSV file from disk and produces a Dataset.
// A failed load yields no dataset.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewFileNotFoundError(path)
		}
		return nil, apperrors.NewFileUnreadableError(path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(name, f)
}

// Parse reads CSV-formatted text with a header row and produces a Dataset.
// The header defines column names and order; every data row must have the
// same number of fields as the header.
func Parse(name string, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	// FieldsPerRecord defaults to the header width, so ragged rows
	// surface as csv.ErrFieldCount.

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewEmptyInputError(name)
	}
	if err != nil {
		return nil, apperrors.NewMalformedCSVError(name, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewMalformedCSVError(name, err)
		}
		rows = append(rows, row)
	}

	columns := make([]Column, len(header))
	for i, h := range header {
		columns[i] = Column{
			Name: h,
			Type: inferColumnType(columnSample(rows, i)),
		}
	}

	return &Dataset{
		Name:     name,
		Columns:  columns,
		Rows:     rows,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// columnSample collects up to typeSampleSize values from column idx.
func columnSample(rows [][]string, idx int) []string {
	limit := len(rows)
	if limit > typeSampleSize {
		limit = typeSampleSize
	}
	values := make([]string, 0, limit)
	for _, row := range rows[:limit] {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values
}
