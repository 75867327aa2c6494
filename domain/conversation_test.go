package domain

import (
	"testing"

	"chat-direct/errors"

	"github.com/stretchr/testify/require"
)

func TestConversationKey_Is_Unordered(t *testing.T) {
	req := require.New(t)

	req.Equal(NewConversationKey("alice", "bob"), NewConversationKey("bob", "alice"))
	req.Equal("alice", NewConversationKey("bob", "alice").Lo)
}

func TestMessage_Key_Matches_Reply_Key(t *testing.T) {
	req := require.New(t)

	message, err := NewMessage("alice", "bob", "hello", "")
	req.NoError(err)
	reply, err := NewMessage("bob", "alice", "hi back", "")
	req.NoError(err)

	req.Equal(message.Key(), reply.Key())
}

func TestNewMessage_Requires_Content(t *testing.T) {
	req := require.New(t)

	_, err := NewMessage("alice", "bob", "", "")
	req.ErrorIs(err, errors.ErrEmptyMessage)

	// Image-only is a valid message
	message, err := NewMessage("alice", "bob", "", "/uploads/pic.png")
	req.NoError(err)
	req.NotZero(message.ID)
	req.False(message.CreatedAt.IsZero())
}
