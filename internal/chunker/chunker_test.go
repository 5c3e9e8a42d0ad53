package chunker

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		assert.Equal(t, domain.DefaultChunkSize, c.ChunkSize())
		assert.Equal(t, domain.DefaultChunkOverlap, c.Overlap())
		assert.True(t, c.charFallback)
	})

	t.Run("custom values", func(t *testing.T) {
		c := New(WithChunkSize(500), WithOverlap(100), WithCharacterFallback(false))
		assert.Equal(t, 500, c.ChunkSize())
		assert.Equal(t, 100, c.Overlap())
		assert.False(t, c.charFallback)
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		c := New(WithChunkSize(100), WithOverlap(150))
		assert.Less(t, c.Overlap(), c.ChunkSize())
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithChunkSize(0), WithOverlap(-1))
		assert.Equal(t, domain.DefaultChunkSize, c.ChunkSize())
		assert.Equal(t, domain.DefaultChunkOverlap, c.Overlap())
	})

	t.Run("from budget", func(t *testing.T) {
		budget := domain.DefaultContextBudget()
		budget.ChunkSize = 200
		budget.ChunkOverlap = 0
		c := NewFromBudget(budget)
		assert.Equal(t, 200, c.ChunkSize())
		assert.Equal(t, 0, c.Overlap())
	})
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New()
	for _, text := range []string{"", "   ", "\n\t\n"} {
		_, err := c.Chunk(text, "empty.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
	}
}

func TestChunk_ShortText(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20))

	chunks, err := c.Chunk("hello world", "short.txt")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].SequenceIndex)
	assert.Equal(t, 0, chunks[0].Offset)
	assert.Equal(t, "short.txt", chunks[0].SourceName)
	assert.Equal(t, 11, chunks[0].CharCount)
	assert.Equal(t, 2, chunks[0].WordCount)
}

func TestChunk_NoBoundariesFallsBackToCharacters(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20))
	text := strings.Repeat("a", 250)

	chunks, err := c.Chunk(text, "flat.txt")
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, []int{0, 80, 160}, []int{chunks[0].Offset, chunks[1].Offset, chunks[2].Offset})
	assert.Equal(t, []int{100, 100, 90}, []int{chunks[0].CharCount, chunks[1].CharCount, chunks[2].CharCount})
	assert.Equal(t, 250, chunks[2].End())
	assert.Equal(t, text, Reassemble(chunks))
}

func TestChunk_MeasuresCodePoints(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20))
	text := strings.Repeat("é", 250)

	chunks, err := c.Chunk(text, "accents.txt")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for _, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch.Content), 100)
	}
	assert.Equal(t, text, Reassemble(chunks))
}

func TestChunk_PrefersParagraphBreaks(t *testing.T) {
	c := New(WithChunkSize(40), WithOverlap(5))
	text := "First paragraph here.\n\nSecond paragraph is a bit longer than that."

	chunks, err := c.Chunk(text, "paras.txt")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "First paragraph here.\n\n", chunks[0].Content)
	assert.Equal(t, text, Reassemble(chunks))
}

func TestChunk_PrefersSentenceOverComma(t *testing.T) {
	c := New(WithChunkSize(50), WithOverlap(0))
	text := "One short sentence. Another one, with a comma, that keeps going on"

	chunks, err := c.Chunk(text, "sentences.txt")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "One short sentence. ", chunks[0].Content)
	assert.Equal(t, text, Reassemble(chunks))
}

func TestChunk_OverlapStartsOnWord(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20))
	text := strings.Repeat("abcd ", 60)

	chunks, err := c.Chunk(text, "words.txt")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	assert.Equal(t, 80, chunks[1].Offset)
	for i, ch := range chunks {
		assert.True(t, strings.HasPrefix(ch.Content, "abcd"), "chunk %d starts mid-word: %q", i, ch.Content)
		if i > 0 {
			assert.Less(t, ch.Offset, chunks[i-1].End(), "chunk %d does not overlap its predecessor", i)
		}
	}
	assert.Equal(t, text, Reassemble(chunks))
}

func TestChunk_UnbreakableTokenEmittedWhole(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20), WithCharacterFallback(false))
	token := strings.Repeat("x", 300)
	text := "short " + token + " tail"

	chunks, err := c.Chunk(text, "token.txt")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Contains(t, chunks[0].Content, token)
	assert.Greater(t, chunks[0].CharCount, 100)
	assert.Equal(t, " tail", chunks[1].Content)
	assert.Equal(t, text, Reassemble(chunks))
}

func TestChunk_Deterministic(t *testing.T) {
	c := New(WithChunkSize(120), WithOverlap(30))
	text := generateText(rand.New(rand.NewSource(7)), 2000)

	first, err := c.Chunk(text, "doc.txt")
	require.NoError(t, err)
	second, err := c.Chunk(text, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChunk_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	configs := []struct {
		size, overlap int
	}{
		{50, 0},
		{50, 10},
		{100, 20},
		{200, 150},
		{1500, 300},
	}

	for _, cfg := range configs {
		for round := 0; round < 5; round++ {
			text := generateText(rng, 500+rng.Intn(4000))
			c := New(WithChunkSize(cfg.size), WithOverlap(cfg.overlap))

			chunks, err := c.Chunk(text, "random.txt")
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			assert.Equal(t, 0, chunks[0].Offset)
			assert.Equal(t, utf8.RuneCountInString(text), chunks[len(chunks)-1].End())

			for i, ch := range chunks {
				assert.Equal(t, i, ch.SequenceIndex)
				assert.LessOrEqual(t, ch.CharCount, cfg.size)
				if i > 0 {
					prev := chunks[i-1]
					assert.Greater(t, ch.Offset, prev.Offset)
					assert.LessOrEqual(t, ch.Offset, prev.End(), "gap before chunk %d", i)
				}
			}

			assert.Equal(t, text, Reassemble(chunks), "size=%d overlap=%d", cfg.size, cfg.overlap)
		}
	}
}

func TestReassemble_Empty(t *testing.T) {
	assert.Equal(t, "", Reassemble(nil))
}

var vocabulary = []string{
	"policy", "employees", "vacation", "days", "the", "year", "remote", "work",
	"benefits", "insurance", "a", "manager", "approval", "request", "supercalifragilistic",
}

var punctuation = []string{" ", " ", " ", " ", ", ", ". ", "! ", "\n", "\n\n"}

func generateText(rng *rand.Rand, approxLen int) string {
	var b strings.Builder
	for b.Len() < approxLen {
		b.WriteString(vocabulary[rng.Intn(len(vocabulary))])
		b.WriteString(punctuation[rng.Intn(len(punctuation))])
	}
	b.WriteString("end")
	return b.String()
}
