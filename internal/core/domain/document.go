package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Document represents a loaded document and the chunks created from it.
// Documents are appended to a session's document set and cleared in bulk.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the display name, usually the file's base name.
	Name string

	// Path is where the document was loaded from. Empty for inline text.
	Path string

	// FullText is the complete extracted text before chunking.
	FullText string

	// Chunks holds the ordered chunks created from FullText.
	Chunks []Chunk

	// LoadedAt is when the document was loaded.
	LoadedAt time.Time
}

// CharCount returns the number of characters in the full text.
func (d *Document) CharCount() int {
	return utf8.RuneCountInString(d.FullText)
}

// WordCount returns the number of whitespace-separated words in the full text.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.FullText))
}

// Chunk represents a bounded contiguous slice of a document.
// Chunks are immutable once created.
type Chunk struct {
	// Content is the text content of this chunk.
	Content string

	// SequenceIndex is the 0-based creation order within the source.
	SequenceIndex int

	// SourceName is the name of the document the chunk came from.
	SourceName string

	// Offset is the character offset of Content within the source text.
	Offset int

	// CharCount is the number of characters in Content.
	CharCount int

	// WordCount is the number of whitespace-separated words in Content.
	WordCount int
}

// NewChunk builds a chunk and computes its size statistics.
func NewChunk(content string, index int, sourceName string, offset int) Chunk {
	return Chunk{
		Content:       content,
		SequenceIndex: index,
		SourceName:    sourceName,
		Offset:        offset,
		CharCount:     utf8.RuneCountInString(content),
		WordCount:     len(strings.Fields(content)),
	}
}

// End returns the character offset just past the chunk's content.
func (c Chunk) End() int {
	return c.Offset + c.CharCount
}

// ScoredChunk is a transient view of a chunk ranked against a query.
type ScoredChunk struct {
	// Chunk is the ranked chunk.
	Chunk Chunk

	// Score is the relevance score in [0,1].
	Score float64
}
