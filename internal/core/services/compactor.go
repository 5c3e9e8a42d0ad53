package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// CompactorState is the state of a HistoryCompactor.
type CompactorState int

const (
	// CompactorNormal means no compaction is in progress.
	CompactorNormal CompactorState = iota
	// CompactorCompacting means the summariser is being called.
	CompactorCompacting
)

// String returns the state name.
func (s CompactorState) String() string {
	switch s {
	case CompactorNormal:
		return "NORMAL"
	case CompactorCompacting:
		return "COMPACTING"
	default:
		return "UNKNOWN"
	}
}

// HistoryCompactor replaces the oldest turns of a history with a single
// summary turn once the history grows past max_turns.
type HistoryCompactor struct {
	maxTurns   int
	keepRecent int
	summariser driven.Summariser

	mu    sync.Mutex
	state CompactorState
}

// NewHistoryCompactor creates a compactor from the turn limits of budget.
// The summariser is optional; without one, compaction always fails.
func NewHistoryCompactor(budget domain.ContextBudget, summariser driven.Summariser) (*HistoryCompactor, error) {
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	return &HistoryCompactor{
		maxTurns:   budget.MaxTurns,
		keepRecent: budget.KeepRecentTurns,
		summariser: summariser,
	}, nil
}

// State returns the current state.
func (c *HistoryCompactor) State() CompactorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// NeedsCompaction reports whether history exceeds max_turns.
func (c *HistoryCompactor) NeedsCompaction(history []domain.Turn) bool {
	return len(history) > c.maxTurns
}

// Compact returns [summary] + the last keep_recent_turns turns when history
// exceeds max_turns, and history unchanged otherwise.
//
// Compaction is all-or-nothing: on summariser failure the original history is
// returned together with an error wrapping domain.ErrCompactionFailed and the
// summariser's error.
func (c *HistoryCompactor) Compact(ctx context.Context, history []domain.Turn) ([]domain.Turn, error) {
	if !c.NeedsCompaction(history) {
		return history, nil
	}

	c.setState(CompactorCompacting)
	defer c.setState(CompactorNormal)

	split := len(history) - c.keepRecent
	old := history[:split]
	recent := history[split:]

	logger.Info("Compacting history: %d turns, summarising %d, keeping %d", len(history), len(old), len(recent))

	if c.summariser == nil {
		return history, fmt.Errorf("%w: %w", domain.ErrCompactionFailed, domain.ErrLLMUnavailable)
	}

	summary, err := c.summariser.Summarise(ctx, old)
	if err != nil {
		logger.Warn("Compaction failed, history left unchanged: %v", err)
		return history, fmt.Errorf("%w: %w", domain.ErrCompactionFailed, err)
	}

	compacted := make([]domain.Turn, 0, len(recent)+1)
	compacted = append(compacted, domain.NewSummaryTurn(summary))
	compacted = append(compacted, recent...)

	logger.Info("Compacted history: %d -> %d turns", len(history), len(compacted))
	return compacted, nil
}

func (c *HistoryCompactor) setState(s CompactorState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	logger.Debug("Compactor %s -> %s", c.state, s)
	c.state = s
}
