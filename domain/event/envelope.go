package event

import "chat-direct/domain"

// EventNewMessage is the name of the push event carried on the real-time
// channel. The payload is always the full persisted message record.
const EventNewMessage = "newMessage"

// Envelope is the wire form of a push event on the real-time channel.
type Envelope struct {
	Event string         `json:"event"`
	Data  domain.Message `json:"data"`
}
