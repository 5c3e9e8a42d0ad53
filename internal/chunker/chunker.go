// Package chunker splits raw document text into overlapping chunks that
// prefer natural boundaries over raw character offsets.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// Separator levels, coarsest first. A finer level is only consulted when no
// boundary of a coarser level fits inside the current window.
var separatorLevels = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? "},
	{", "},
	{" ", "\t"},
}

// Chunker splits text into overlapping chunks.
// Lengths and offsets are measured in Unicode code points.
type Chunker struct {
	chunkSize    int
	overlap      int
	charFallback bool
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithCharacterFallback controls what happens when a window holds no boundary at all.
// When enabled (the default) the window is cut at chunk_size characters.
// When disabled the unbreakable token is emitted whole, producing an oversized chunk.
func WithCharacterFallback(enabled bool) Option {
	return func(c *Chunker) {
		c.charFallback = enabled
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:    domain.DefaultChunkSize,
		overlap:      domain.DefaultChunkOverlap,
		charFallback: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// NewFromBudget creates a chunker using the chunk settings of a budget.
func NewFromBudget(budget domain.ContextBudget, opts ...Option) *Chunker {
	base := []Option{WithChunkSize(budget.ChunkSize), WithOverlap(budget.ChunkOverlap)}
	return New(append(base, opts...)...)
}

// ChunkSize returns the configured maximum chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into ordered chunks attributed to sourceName.
// Returns domain.ErrEmptyInput if the text is empty after trimming.
func (c *Chunker) Chunk(text, sourceName string) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("chunk %q: %w", sourceName, domain.ErrEmptyInput)
	}

	runes := []rune(text)
	n := len(runes)

	chunks := make([]domain.Chunk, 0, n/(c.chunkSize-c.overlap)+1)
	start := 0

	for {
		if n-start <= c.chunkSize {
			chunks = append(chunks, domain.NewChunk(string(runes[start:]), len(chunks), sourceName, start))
			break
		}

		end, whole := c.cut(runes, start)
		chunks = append(chunks, domain.NewChunk(string(runes[start:end]), len(chunks), sourceName, start))

		if end >= n {
			break
		}
		if whole {
			// No overlap into an unbreakable token
			start = end
			continue
		}
		start = nextStart(runes, end-c.overlap, end)
	}

	return chunks, nil
}

// cut returns the exclusive end of the chunk starting at start.
// whole reports that an unbreakable token was emitted past chunk_size.
func (c *Chunker) cut(runes []rune, start int) (end int, whole bool) {
	// The cut must land beyond start+overlap so the next chunk makes progress.
	lo := start + c.overlap + 1
	hi := start + c.chunkSize

	for _, level := range separatorLevels {
		if e := lastBoundary(runes, lo, hi, level); e > 0 {
			return e, false
		}
	}

	if c.charFallback {
		return hi, false
	}

	end = hi
	for end < len(runes) && !unicode.IsSpace(runes[end]) {
		end++
	}
	return end, true
}

// lastBoundary finds the greatest end position e in [lo, hi] such that one of
// seps ends at e. Returns 0 when there is none.
func lastBoundary(runes []rune, lo, hi int, seps []string) int {
	best := 0
	for _, sep := range seps {
		sr := []rune(sep)
		for e := hi; e >= lo && e > best; e-- {
			if e-len(sr) < 0 {
				break
			}
			if hasRunesAt(runes, e-len(sr), sr) {
				best = e
				break
			}
		}
	}
	return best
}

func hasRunesAt(runes []rune, at int, sep []rune) bool {
	for i, r := range sep {
		if runes[at+i] != r {
			return false
		}
	}
	return true
}

// nextStart snaps the overlap start forward to a word start before end.
// Falls back to from when the overlap window holds no word start.
func nextStart(runes []rune, from, end int) int {
	for i := from; i < end; i++ {
		if i > 0 && unicode.IsSpace(runes[i-1]) && !unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return from
}

// Reassemble concatenates the non-overlapping portions of consecutive chunks.
// For chunks produced by Chunk it reproduces the original text exactly.
func Reassemble(chunks []domain.Chunk) string {
	var b strings.Builder
	covered := 0
	for _, ch := range chunks {
		runes := []rune(ch.Content)
		skip := covered - ch.Offset
		if skip < 0 {
			skip = 0
		}
		if skip < len(runes) {
			b.WriteString(string(runes[skip:]))
		}
		if ch.End() > covered {
			covered = ch.End()
		}
	}
	return b.String()
}
