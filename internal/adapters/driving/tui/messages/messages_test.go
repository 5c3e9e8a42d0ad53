package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewChat, "chat"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestReplyReceived_CarriesReplyAndError(t *testing.T) {
	msg := ReplyReceived{
		Reply:   "hello",
		History: []domain.Turn{domain.NewTurn("hi", "hello")},
		Err:     domain.ErrCompactionFailed,
	}

	assert.Equal(t, "hello", msg.Reply)
	assert.Len(t, msg.History, 1)
	assert.True(t, errors.Is(msg.Err, domain.ErrCompactionFailed))
}
