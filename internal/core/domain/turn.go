package domain

import "time"

// TurnOrigin tags how a turn entered the history.
type TurnOrigin string

// Available turn origins.
const (
	// TurnOriginNormal is a real user/assistant exchange.
	TurnOriginNormal TurnOrigin = "normal"

	// TurnOriginSummary is a synthetic turn produced by compaction.
	TurnOriginSummary TurnOrigin = "summary"
)

// SummaryUserText is the user text carried by every summary turn.
const SummaryUserText = "[Summary]"

// IsValid returns true if the origin is recognised.
func (o TurnOrigin) IsValid() bool {
	switch o {
	case TurnOriginNormal, TurnOriginSummary:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (o TurnOrigin) String() string {
	return string(o)
}

// Turn is one exchange in a conversation. Turns are never edited in place.
type Turn struct {
	// UserText is what the user said.
	UserText string

	// AssistantText is what the backend replied, or the summary text.
	AssistantText string

	// Timestamp is when the exchange completed.
	Timestamp time.Time

	// Origin distinguishes real exchanges from compaction summaries.
	Origin TurnOrigin
}

// NewTurn creates a normal turn stamped with the current time.
func NewTurn(userText, assistantText string) Turn {
	return Turn{
		UserText:      userText,
		AssistantText: assistantText,
		Timestamp:     time.Now(),
		Origin:        TurnOriginNormal,
	}
}

// NewSummaryTurn creates the synthetic turn that replaces a compacted prefix.
func NewSummaryTurn(summary string) Turn {
	return Turn{
		UserText:      SummaryUserText,
		AssistantText: summary,
		Timestamp:     time.Now(),
		Origin:        TurnOriginSummary,
	}
}

// IsSummary returns true if the turn was produced by compaction.
func (t Turn) IsSummary() bool {
	return t.Origin == TurnOriginSummary
}
