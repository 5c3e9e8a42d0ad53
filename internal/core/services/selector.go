package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/logger"
	"github.com/custodia-labs/ctxwin/internal/relevance"
)

// ChunkSelector ranks chunks against a query and keeps the best top-K.
type ChunkSelector struct {
	topK         int
	minRelevance float64
}

// NewChunkSelector creates a selector returning at most topK chunks whose
// score is positive and at least minRelevance.
func NewChunkSelector(topK int, minRelevance float64) *ChunkSelector {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if minRelevance < 0 {
		minRelevance = 0
	}
	return &ChunkSelector{topK: topK, minRelevance: minRelevance}
}

// Select scores every chunk against query and returns the qualifying chunks
// in descending score order, ties broken by source name then sequence index.
//
// Returns domain.ErrNoDocumentsLoaded when chunks is empty. An empty result
// with a nil error means nothing was relevant.
func (s *ChunkSelector) Select(query string, chunks []domain.Chunk) ([]domain.ScoredChunk, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("select chunks: %w", domain.ErrNoDocumentsLoaded)
	}

	scorer := relevance.NewScorer(query)
	logger.Debug("Query terms: %v", scorer.Terms())

	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, ch := range chunks {
		score := scorer.Score(ch.Content)
		if score <= 0 || score < s.minRelevance {
			continue
		}
		scored = append(scored, domain.ScoredChunk{Chunk: ch, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Chunk.SourceName != b.Chunk.SourceName {
			return a.Chunk.SourceName < b.Chunk.SourceName
		}
		return a.Chunk.SequenceIndex < b.Chunk.SequenceIndex
	})

	logger.Debug("Scored %d chunks, %d relevant", len(chunks), len(scored))

	if len(scored) > s.topK {
		scored = scored[:s.topK]
	}
	return scored, nil
}
