package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_HasFlags(t *testing.T) {
	file := askCmd.Flags().Lookup("file")
	require.NotNil(t, file)
	assert.Equal(t, "f", file.Shorthand)
	assert.NotNil(t, askCmd.Flags().Lookup("context"))
	assert.NotNil(t, askCmd.Flags().Lookup("json"))
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute(t, "", "ask", "-f", "notes.md")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_RequiresFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute(t, "", "ask", "what?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "", "ask", "-f", "notes.md", "what", "is", "it?")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded notes.md (1 chunks)")
	assert.Contains(t, out, "The answer is 42.")
	assert.Contains(t, out, "Confidence: high")
	assert.Contains(t, out, "1. notes.md (chunk 0, score 0.75)")
	assert.Equal(t, []string{"what is it?"}, ts.documents.asked)
}

func TestAskCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "", "ask", "-f", "notes.md", "--json", "why?")
	require.NoError(t, err)

	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0)
	var answer domain.Answer
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &answer))
	assert.Equal(t, "why?", answer.Question)
	assert.Equal(t, domain.ConfidenceHigh, answer.Confidence)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "notes.md", answer.Sources[0].Document)
}

func TestAskCmd_ContextOnly(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.assembled = &domain.AssembledContext{
		Block:     "[Source 1: notes.md]\nalpha beta",
		Citations: []domain.Citation{{Document: "notes.md", Score: 0.4}},
		Chunks:    []domain.ScoredChunk{{Chunk: domain.NewChunk("alpha beta", 0, "notes.md", 0), Score: 0.4}},
	}

	out, _, err := execute(t, "", "ask", "-f", "notes.md", "--context", "alpha")

	require.NoError(t, err)
	assert.Contains(t, out, "[Source 1: notes.md]")
	assert.Contains(t, out, "Sources:")
	assert.Empty(t, ts.documents.asked)
}

func TestAskCmd_ContextOnlyEmpty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "", "ask", "-f", "notes.md", "--context", "zzz")

	require.NoError(t, err)
	assert.Contains(t, out, "No relevant chunks found.")
}

func TestAskCmd_PartialLoadFailureWarns(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.failures = map[string]error{"bad.xyz": domain.ErrUnsupportedFormat}

	out, errOut, err := execute(t, "", "ask", "-f", "bad.xyz", "-f", "good.txt", "q")

	require.NoError(t, err)
	assert.Contains(t, errOut, "could not load bad.xyz")
	assert.Contains(t, out, "Loaded good.txt")
}

func TestAskCmd_AllLoadsFail(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.failures = map[string]error{"missing.txt": domain.ErrFileNotFound}

	_, _, err := execute(t, "", "ask", "-f", "missing.txt", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoDocumentsLoaded)
}

func TestAskCmd_AskError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.askErr = domain.ErrBackendUnavailable

	_, _, err := execute(t, "", "ask", "-f", "notes.md", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestAskCmd_NoService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	documentService = nil

	_, _, err := execute(t, "", "ask", "-f", "notes.md", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document service not configured")
}
