package domain

import "fmt"

// Default budget values.
const (
	DefaultChunkSize       = 1500
	DefaultChunkOverlap    = 300
	DefaultTopK            = 5
	DefaultMinRelevance    = 0.0
	DefaultMaxTurns        = 20
	DefaultKeepRecentTurns = 5
)

// ContextBudget bounds every context handed to the generation backend.
// It is configuration, never persisted state.
type ContextBudget struct {
	// ChunkSize is the maximum characters per chunk.
	ChunkSize int

	// ChunkOverlap is the characters shared by consecutive chunks.
	ChunkOverlap int

	// TopK is the maximum number of chunks selected per query.
	TopK int

	// MinRelevance is the lowest score a selected chunk may have.
	MinRelevance float64

	// MaxTurns is the history length that triggers compaction.
	MaxTurns int

	// KeepRecentTurns is how many turns survive compaction verbatim.
	KeepRecentTurns int
}

// DefaultContextBudget returns the budget observed in practice.
func DefaultContextBudget() ContextBudget {
	return ContextBudget{
		ChunkSize:       DefaultChunkSize,
		ChunkOverlap:    DefaultChunkOverlap,
		TopK:            DefaultTopK,
		MinRelevance:    DefaultMinRelevance,
		MaxTurns:        DefaultMaxTurns,
		KeepRecentTurns: DefaultKeepRecentTurns,
	}
}

// Validate checks the budget invariants.
func (b ContextBudget) Validate() error {
	switch {
	case b.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidBudget, b.ChunkSize)
	case b.ChunkOverlap < 0:
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d", ErrInvalidBudget, b.ChunkOverlap)
	case b.ChunkOverlap >= b.ChunkSize:
		return fmt.Errorf("%w: chunk_overlap (%d) must be less than chunk_size (%d)",
			ErrInvalidBudget, b.ChunkOverlap, b.ChunkSize)
	case b.TopK <= 0:
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidBudget, b.TopK)
	case b.MinRelevance < 0:
		return fmt.Errorf("%w: min_relevance must not be negative, got %g", ErrInvalidBudget, b.MinRelevance)
	case b.MaxTurns <= 0:
		return fmt.Errorf("%w: max_turns must be positive, got %d", ErrInvalidBudget, b.MaxTurns)
	case b.KeepRecentTurns <= 0:
		return fmt.Errorf("%w: keep_recent_turns must be positive, got %d", ErrInvalidBudget, b.KeepRecentTurns)
	case b.KeepRecentTurns >= b.MaxTurns:
		return fmt.Errorf("%w: keep_recent_turns (%d) must be less than max_turns (%d)",
			ErrInvalidBudget, b.KeepRecentTurns, b.MaxTurns)
	}
	return nil
}
