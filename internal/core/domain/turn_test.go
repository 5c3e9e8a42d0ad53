package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTurn(t *testing.T) {
	turn := NewTurn("hi", "hello")

	assert.Equal(t, "hi", turn.UserText)
	assert.Equal(t, "hello", turn.AssistantText)
	assert.Equal(t, TurnOriginNormal, turn.Origin)
	assert.False(t, turn.Timestamp.IsZero())
	assert.False(t, turn.IsSummary())
}

func TestNewSummaryTurn(t *testing.T) {
	turn := NewSummaryTurn("we talked about Go")

	assert.Equal(t, "[Summary]", turn.UserText)
	assert.Equal(t, "we talked about Go", turn.AssistantText)
	assert.Equal(t, TurnOriginSummary, turn.Origin)
	assert.True(t, turn.IsSummary())
}

func TestTurnOrigin_IsValid(t *testing.T) {
	assert.True(t, TurnOriginNormal.IsValid())
	assert.True(t, TurnOriginSummary.IsValid())
	assert.False(t, TurnOrigin("edited").IsValid())
	assert.Equal(t, "summary", TurnOriginSummary.String())
}
