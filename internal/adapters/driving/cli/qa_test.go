package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

func TestQACmd_Use(t *testing.T) {
	assert.Equal(t, "qa [files...]", qaCmd.Use)
}

func TestQACmd_Session(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	input := "summary\nwhat is alpha?\nload\nquit\n"
	out, _, err := execute(t, input, "qa", "notes.md")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 1 document(s).")
	assert.Contains(t, out, "1 document(s), 1 chunks")
	assert.Contains(t, out, "notes.md: 1 chunks, 4 words, 22 chars, loaded 2026-03-01 09:00")
	assert.Contains(t, out, "The answer is 42.")
	assert.Contains(t, out, "Usage: load <path>")
	assert.Equal(t, []string{"what is alpha?"}, ts.documents.asked)
}

func TestQACmd_AskBeforeLoad(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "anything?\nexit\n", "qa")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents loaded. Use 'load <path>' first.")
}

func TestQACmd_LoadAndClear(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.failures = map[string]error{"gone.txt": domain.ErrFileNotFound}

	out, _, err := execute(t, "load a.txt\nload gone.txt\nclear\nsummary\n", "qa")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded a.txt: 1 chunks, 4 words")
	assert.Contains(t, out, "Error: file not found")
	assert.Contains(t, out, "All documents cleared.")
	assert.Contains(t, out, "No documents loaded.")
	assert.True(t, ts.documents.cleared)
}

func TestQACmd_Help(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "help\nquit\n", "qa")

	require.NoError(t, err)
	assert.Contains(t, out, "load <path>")
}
