// internal/dataset/loader_test.go
package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "csv-chat/internal/common/errors"
)

func TestParse_WellFormed(t *testing.T) {
	input := "name,age\nAlice,30\nBob,25\n"

	ds, err := Parse("people", strings.NewReader(input))
	require.NoError(t, err)
	require.NotNil(t, ds)

	assert.Equal(t, "people", ds.Name)
	assert.Equal(t, 2, ds.RowCount())
	assert.Equal(t, []string{"name", "age"}, ds.ColumnNames())
	assert.Equal(t, [][]string{{"Alice", "30"}, {"Bob", "25"}}, ds.Rows)
}

func TestParse_ColumnOrderPreserved(t *testing.T) {
	input := "zeta,alpha,mid\n1,2,3\n"

	ds, err := Parse("ordered", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ds.ColumnNames())
}

func TestParse_TypeInference(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []ColumnType
	}{
		{
			name:     "integers and strings",
			input:    "name,age\nAlice,30\nBob,25\n",
			expected: []ColumnType{TypeString, TypeInteger},
		},
		{
			name:     "floats",
			input:    "price\n19.99\n5.00\n12.5\n",
			expected: []ColumnType{TypeFloat},
		},
		{
			name:     "booleans",
			input:    "active\ntrue\nfalse\nTRUE\n",
			expected: []ColumnType{TypeBoolean},
		},
		{
			name:     "dates",
			input:    "joined\n2024-01-15\n2024-02-20\n",
			expected: []ColumnType{TypeDate},
		},
		{
			name:     "mixed numeric falls back to float",
			input:    "value\n10\n10.5\n11\n",
			expected: []ColumnType{TypeFloat},
		},
		{
			name:     "mostly text stays string",
			input:    "note\nhello\n42\nworld\nmore text\nagain\n",
			expected: []ColumnType{TypeString},
		},
		{
			name:     "empty cells ignored for sampling",
			input:    "n\n\n5\n7\n",
			expected: []ColumnType{TypeInteger},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse("t", strings.NewReader(tt.input))
			require.NoError(t, err)
			require.Len(t, ds.Columns, len(tt.expected))
			for i, want := range tt.expected {
				assert.Equal(t, want, ds.Columns[i].Type, "column %s", ds.Columns[i].Name)
			}
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	ds, err := Parse("empty", strings.NewReader(""))

	assert.Nil(t, ds)
	require.Error(t, err)
	assert.True(t, apperrors.IsLoadError(err))
	assert.Equal(t, apperrors.ErrCodeEmptyInput, apperrors.CodeOf(err))
}

func TestParse_HeaderOnly(t *testing.T) {
	ds, err := Parse("header-only", strings.NewReader("a,b,c\n"))

	require.NoError(t, err)
	assert.Equal(t, 0, ds.RowCount())
	assert.Equal(t, []string{"a", "b", "c"}, ds.ColumnNames())
}

func TestParse_InconsistentColumnCounts(t *testing.T) {
	input := "a,b\n1,2\n3,4,5\n"

	ds, err := Parse("ragged", strings.NewReader(input))

	assert.Nil(t, ds)
	require.Error(t, err)
	assert.True(t, apperrors.IsLoadError(err))
	assert.Equal(t, apperrors.ErrCodeMalformedCSV, apperrors.CodeOf(err))
}

func TestParse_QuotedFields(t *testing.T) {
	input := "name,comment\nAlice,\"likes, commas\"\n"

	ds, err := Parse("quoted", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "likes, commas", ds.Rows[0][1])
}

func TestLoad_MissingFile(t *testing.T) {
	ds, err := Load(filepath.Join(t.TempDir(), "does-not-exist.csv"))

	assert.Nil(t, ds)
	require.Error(t, err)
	assert.True(t, apperrors.IsLoadError(err))
	assert.Equal(t, apperrors.ErrCodeFileNotFound, apperrors.CodeOf(err))
}

func TestLoad_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nAlice,30\nBob,25\n"), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "people", ds.Name)
	assert.Equal(t, 2, ds.RowCount())
}

func TestSampleRows(t *testing.T) {
	ds, err := Parse("s", strings.NewReader("n\n1\n2\n3\n4\n"))
	require.NoError(t, err)

	assert.Len(t, ds.SampleRows(2), 2)
	assert.Len(t, ds.SampleRows(0), 4)
	assert.Len(t, ds.SampleRows(100), 4)
}
