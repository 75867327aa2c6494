package event

import (
	"chat-direct/domain"
)

// DomainEvent is implemented by everything flowing through the delivery
// pipeline. ReceiverID names the single user the event is routed to.
type DomainEvent interface {
	Receiver() string
}

// NewMessage is pushed to the recipient's live connection after a message
// has been durably appended. It carries the full persisted record.
type NewMessage struct {
	Message domain.Message
}

func (e NewMessage) Receiver() string {
	return e.Message.ReceiverID
}
