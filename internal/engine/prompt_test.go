// internal/engine/prompt_test.go
package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csv-chat/internal/dataset"
)

func TestBuildPrompt_CapsDataRows(t *testing.T) {
	var csv strings.Builder
	csv.WriteString("n\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&csv, "row%d\n", i)
	}
	ds, err := dataset.Parse("big", strings.NewReader(csv.String()))
	require.NoError(t, err)

	prompt := BuildPrompt(ds, 3)

	assert.Contains(t, prompt, "TABLE: 10 rows")
	assert.Contains(t, prompt, "first 3 of 10 rows")
	assert.Contains(t, prompt, "row0")
	assert.Contains(t, prompt, "row2")
	assert.NotContains(t, prompt, "row3")
	assert.NotContains(t, prompt, "row9")
}

func TestBuildPrompt_FullTableWhenUnderCap(t *testing.T) {
	ds, err := dataset.Parse("people", strings.NewReader("name,age\nAlice,30\nBob,25\n"))
	require.NoError(t, err)

	prompt := BuildPrompt(ds, 100)

	assert.Contains(t, prompt, "full table")
	assert.Contains(t, prompt, "Alice,30")
	assert.Contains(t, prompt, "Bob,25")
	assert.Contains(t, prompt, `"age" (integer)`)
}
