package driven

import (
	"context"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// Summariser condenses an ordered run of turns into a single summary string.
// It may be backed by the same generation backend used for answers.
type Summariser interface {
	// Summarise returns a summary of the given turns, oldest first.
	Summarise(ctx context.Context, turns []domain.Turn) (string, error)
}
