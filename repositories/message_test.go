package repositories

import (
	"log/slog"
	"testing"
	"time"

	"chat-direct/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func messageAt(sender, receiver, text string, at time.Time) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		CreatedAt:  at,
	}
}

func Test_Record_Multiple_Messages_Chat_Order(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	at := time.Now().UTC().Truncate(time.Microsecond)
	messages := []domain.Message{
		messageAt("alice", "bob", "hello", at),
		messageAt("bob", "alice", "hi back", at.Add(1*time.Minute)),
		messageAt("alice", "bob", "how are you", at.Add(2*time.Minute)),
	}
	// Stored out of order on purpose: the key layout must restore chat order.
	for _, i := range []int{2, 0, 1} {
		req.NoError(repository.StoreMessage(messages[i]))
	}

	fetched, err := repository.GetConversation("alice", "bob")
	req.NoError(err)
	req.Len(fetched, len(messages))
	req.Equal(messages, fetched)
}

func Test_GetConversation_Is_Direction_Free(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	at := time.Now().UTC().Truncate(time.Microsecond)
	req.NoError(repository.StoreMessage(messageAt("alice", "bob", "one", at)))
	req.NoError(repository.StoreMessage(messageAt("bob", "alice", "two", at.Add(time.Second))))

	// Both argument orders land on the same conversation
	ab, err := repository.GetConversation("alice", "bob")
	req.NoError(err)
	ba, err := repository.GetConversation("bob", "alice")
	req.NoError(err)
	req.Equal(ab, ba)
	req.Len(ab, 2)
}

func Test_GetConversation_Does_Not_Leak_Other_Conversations(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	at := time.Now().UTC().Truncate(time.Microsecond)
	req.NoError(repository.StoreMessage(messageAt("alice", "bob", "for bob", at)))
	req.NoError(repository.StoreMessage(messageAt("alice", "clara", "for clara", at)))

	fetched, err := repository.GetConversation("alice", "bob")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("for bob", fetched[0].Text)
}

func Test_Record_Multiple_Messages_And_Limit(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	limit := 2
	repository := NewMessageRepository(db, slog.Default(), &limit)
	at := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 3; i++ {
		msg := messageAt("alice", "bob", "ping", at.Add(time.Duration(i)*time.Minute))
		req.NoError(repository.StoreMessage(msg))
	}

	fetched, err := repository.GetConversation("alice", "bob")
	req.NoError(err)
	req.Len(fetched, limit)
}

func Test_LastActivity(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	at := time.Now().UTC().Truncate(time.Microsecond)
	newest := at.Add(2 * time.Minute)
	req.NoError(repository.StoreMessage(messageAt("alice", "bob", "old", at)))
	req.NoError(repository.StoreMessage(messageAt("bob", "alice", "newest", newest)))

	last, ok, err := repository.LastActivity("alice", "bob")
	req.NoError(err)
	req.True(ok)
	req.Equal(newest, last)
}

func Test_LastActivity_Empty_Conversation(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)

	_, ok, err := repository.LastActivity("alice", "bob")
	req.NoError(err)
	req.False(ok)
}
