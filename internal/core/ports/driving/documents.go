package driving

import (
	"context"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// DocumentQAService answers questions from loaded documents.
type DocumentQAService interface {
	// Load reads, chunks, and stores the document at path.
	Load(ctx context.Context, path string) (*domain.Document, error)

	// LoadText chunks and stores already-extracted text under name.
	LoadText(ctx context.Context, name, text string) (*domain.Document, error)

	// LoadMany loads several documents, continuing past failures.
	// The returned map holds the error for each path that failed.
	LoadMany(ctx context.Context, paths []string) ([]*domain.Document, map[string]error)

	// Ask answers a question using the most relevant chunks.
	// Returns domain.ErrNoDocumentsLoaded when nothing is loaded.
	// A relevance miss is an Answer with low confidence, not an error.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// AssembleContext builds the bounded context block for a question without generating.
	AssembleContext(ctx context.Context, question string) (*domain.AssembledContext, error)

	// Documents returns the loaded documents in load order.
	Documents() []*domain.Document

	// ChunkCount returns the number of chunks across all documents.
	ChunkCount() int

	// Clear removes all loaded documents.
	Clear()
}
