package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chat-direct/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetConversation(userA, userB string) ([]domain.Message, error)
	LastActivity(userA, userB string) (time.Time, bool, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// diskMessage is the stored representation of a message.
type diskMessage struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	At         int64     `json:"at"`
}

// conversationPrefix is direction-free: both (A,B) and (B,A) land under the
// same prefix because the pair is sorted inside the key.
func conversationPrefix(userA, userB string) string {
	key := domain.NewConversationKey(userA, userB)
	return fmt.Sprintf("msg:%s:%s:", key.Lo, key.Hi)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{lo}:{hi}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message domain.Message) error {
	key := fmt.Sprintf("%s%019d:%s",
		conversationPrefix(message.SenderID, message.ReceiverID),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetConversation retrieves every message of the (userA, userB) conversation
// using a prefix scan. Thanks to the padded timestamp in the key, messages
// come back naturally sorted in chat order (oldest first). It stops
// collecting once the configured limitMessages is reached.
func (m MessageRepository) GetConversation(userA, userB string) ([]domain.Message, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationPrefix(userA, userB))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var dm diskMessage
		if err = json.Unmarshal(b, &dm); err != nil {
			return nil, err
		}
		messages = append(messages, toMessage(dm))
	}
	return messages, nil
}

// LastActivity returns the timestamp of the most recent message in the
// conversation, or false if the two users never exchanged anything.
// A reverse iterator seeks past the newest possible key and lands on the
// last entry of the prefix, so only one item is ever read.
func (m MessageRepository) LastActivity(userA, userB string) (time.Time, bool, error) {
	var found bool
	var last diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationPrefix(userA, userB))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append(append([]byte(nil), prefix...), []byte("9999999999999999999")...)
		it.Seek(seekKey)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		found = true
		return it.Item().Value(func(value []byte) error {
			return json.Unmarshal(value, &last)
		})
	})
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return time.Unix(0, last.At).UTC(), true, nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:         message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Text:       message.Text,
		ImageURL:   message.ImageURL,
		At:         message.CreatedAt.UnixNano(),
	}
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:         dm.ID,
		SenderID:   dm.SenderID,
		ReceiverID: dm.ReceiverID,
		Text:       dm.Text,
		ImageURL:   dm.ImageURL,
		CreatedAt:  time.Unix(0, dm.At).UTC(),
	}
}
