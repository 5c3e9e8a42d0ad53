package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ctxwin/internal/chunker"
	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driving"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentQAService = (*DocumentService)(nil)

const (
	// ContextSeparator joins the tagged chunks of a context block.
	ContextSeparator = "\n---\n"

	// PreviewLength is the number of characters shown in a citation preview.
	PreviewLength = 200
)

// DocumentService is the document-mode context assembler. It chunks loaded
// documents once and, per question, selects the most relevant chunks and
// hands them to the generation backend.
type DocumentService struct {
	loader   driven.DocumentLoader
	llm      driven.LLMService
	prompts  driven.PromptStore
	chunker  *chunker.Chunker
	selector *ChunkSelector

	mu        sync.RWMutex
	documents []*domain.Document
}

// NewDocumentService creates a document service.
// The llm parameter is optional (can be nil); without it, Ask fails with
// domain.ErrLLMUnavailable but AssembleContext still works.
func NewDocumentService(
	budget domain.ContextBudget,
	loader driven.DocumentLoader,
	llm driven.LLMService,
	chunkOpts ...chunker.Option,
) (*DocumentService, error) {
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	return &DocumentService{
		loader:   loader,
		llm:      llm,
		chunker:  chunker.NewFromBudget(budget, chunkOpts...),
		selector: NewChunkSelector(budget.TopK, budget.MinRelevance),
	}, nil
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *DocumentService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Load reads, chunks, and stores the document at path.
func (s *DocumentService) Load(ctx context.Context, path string) (*domain.Document, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("load %s: no document loader configured", path)
	}

	text, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	doc, err := s.add(filepath.Base(path), path, text)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadText chunks and stores already-extracted text under name.
func (s *DocumentService) LoadText(_ context.Context, name, text string) (*domain.Document, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	return s.add(name, "", text)
}

// LoadMany loads several documents, continuing past failures.
func (s *DocumentService) LoadMany(ctx context.Context, paths []string) ([]*domain.Document, map[string]error) {
	docs := make([]*domain.Document, 0, len(paths))
	failed := make(map[string]error)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			failed[path] = err
			continue
		}
		doc, err := s.Load(ctx, path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			failed[path] = err
			continue
		}
		docs = append(docs, doc)
	}

	return docs, failed
}

func (s *DocumentService) add(name, path, text string) (*domain.Document, error) {
	chunks, err := s.chunker.Chunk(text, name)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:       uuid.New().String(),
		Name:     name,
		Path:     path,
		FullText: text,
		Chunks:   chunks,
		LoadedAt: time.Now(),
	}

	s.mu.Lock()
	s.documents = append(s.documents, doc)
	s.mu.Unlock()

	logger.Info("Loaded %s: %d chars, %d words, %d chunks", name, doc.CharCount(), doc.WordCount(), len(chunks))
	return doc, nil
}

// AssembleContext builds the bounded context block for question.
// Returns domain.ErrNoDocumentsLoaded when nothing is loaded. An empty
// context means no chunk was relevant.
func (s *DocumentService) AssembleContext(_ context.Context, question string) (*domain.AssembledContext, error) {
	logger.Section("Context Assembly")

	chunks := s.allChunks()
	if len(chunks) == 0 {
		return nil, fmt.Errorf("assemble context: %w", domain.ErrNoDocumentsLoaded)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrEmptyInput)
	}

	selected, err := s.selector.Select(question, chunks)
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(selected))
	citations := make([]domain.Citation, 0, len(selected))
	for _, sc := range selected {
		parts = append(parts, fmt.Sprintf("[source: %s, chunk: %d]\n%s",
			sc.Chunk.SourceName, sc.Chunk.SequenceIndex, sc.Chunk.Content))
		citations = append(citations, domain.Citation{
			Document:   sc.Chunk.SourceName,
			ChunkIndex: sc.Chunk.SequenceIndex,
			Score:      sc.Score,
			Preview:    Preview(sc.Chunk.Content),
		})
	}

	logger.Debug("Selected %d chunks for context", len(selected))

	return &domain.AssembledContext{
		Block:     strings.Join(parts, ContextSeparator),
		Citations: citations,
		Chunks:    selected,
	}, nil
}

// Ask answers question from the loaded documents.
// When no chunk is relevant, a low-confidence fallback answer is returned
// without calling the backend. Backend errors are propagated unchanged.
func (s *DocumentService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	assembled, err := s.AssembleContext(ctx, question)
	if err != nil {
		return nil, err
	}

	docCount := len(s.Documents())
	question = strings.TrimSpace(question)

	if assembled.Empty() {
		logger.Info("No relevant chunks found")
		return &domain.Answer{
			Question:          question,
			Answer:            domain.NoRelevantMatchAnswer,
			Confidence:        domain.ConfidenceLow,
			Sources:           []domain.Citation{},
			DocumentsSearched: docCount,
		}, nil
	}

	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	system := loadPrompt(s.prompts, driven.PromptDocumentSystem)
	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptDocumentQuestion), assembled.Block, question)

	logger.Debug("Generating answer with %s", s.llm.ModelName())
	done := logger.Timed("generate answer")
	text, err := s.llm.Generate(ctx, system, prompt, driven.GenerateOptions{})
	done()
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Question:          question,
		Answer:            strings.TrimSpace(text),
		Confidence:        domain.ConfidenceForScore(assembled.Chunks[0].Score),
		Sources:           assembled.Citations,
		ChunksUsed:        len(assembled.Chunks),
		DocumentsSearched: docCount,
	}, nil
}

// Documents returns the loaded documents in load order.
func (s *DocumentService) Documents() []*domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*domain.Document, len(s.documents))
	copy(docs, s.documents)
	return docs
}

// ChunkCount returns the number of chunks across all documents.
func (s *DocumentService) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, d := range s.documents {
		n += len(d.Chunks)
	}
	return n
}

// Clear removes all loaded documents.
func (s *DocumentService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = nil
	logger.Info("Cleared all documents")
}

func (s *DocumentService) allChunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []domain.Chunk
	for _, d := range s.documents {
		chunks = append(chunks, d.Chunks...)
	}
	return chunks
}

// Preview returns the first PreviewLength characters of content, with an
// ellipsis when truncated.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength]) + "..."
}
