package domain

import (
	"time"
	"unicode/utf8"
)

// SavedConversation is a titled snapshot of a chat history.
type SavedConversation struct {
	// ID is the unique identifier for the snapshot.
	ID string

	// Title is the user supplied or generated title.
	Title string

	// SavedAt is when the snapshot was taken.
	SavedAt time.Time

	// Provider is the backend provider that produced the replies.
	Provider string

	// Turns is the history at the time of saving.
	Turns []Turn
}

// DefaultConversationTitle generates a title from the save time.
func DefaultConversationTitle(t time.Time) string {
	return "Conversation " + t.Format("2006-01-02 15:04")
}

// HistoryStats summarises a conversation history.
type HistoryStats struct {
	// Turns is the number of turns, including summary turns.
	Turns int

	// SummaryTurns is the number of summary turns.
	SummaryTurns int

	// TotalChars is the number of characters across user and assistant text.
	TotalChars int

	// First and Last are the timestamps of the oldest and newest turns.
	First time.Time
	Last  time.Time
}

// AverageChars returns the mean characters per turn.
func (s HistoryStats) AverageChars() int {
	if s.Turns == 0 {
		return 0
	}
	return s.TotalChars / s.Turns
}

// ComputeHistoryStats computes statistics for turns.
func ComputeHistoryStats(turns []Turn) HistoryStats {
	stats := HistoryStats{Turns: len(turns)}
	for _, t := range turns {
		if t.IsSummary() {
			stats.SummaryTurns++
		}
		stats.TotalChars += utf8.RuneCountInString(t.UserText) + utf8.RuneCountInString(t.AssistantText)
	}
	if len(turns) > 0 {
		stats.First = turns[0].Timestamp
		stats.Last = turns[len(turns)-1].Timestamp
	}
	return stats
}
