// Package domain contains core concepts of the direct-messaging system.
// This file defines Message records and their invariants.
// Messages are immutable and validated on creation.
package domain

import (
	"time"

	"chat-direct/errors"

	"github.com/google/uuid"
)

// Message represents an immutable direct message between two users.
// At least one of Text or ImageURL is always present.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewMessage builds a validated message with a server-side id and timestamp.
func NewMessage(senderID, receiverID, text, imageURL string) (Message, error) {
	if text == "" && imageURL == "" {
		return Message{}, errors.ErrEmptyMessage
	}
	return Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		ImageURL:   imageURL,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
