package sink

import (
	"context"

	"chat-direct/domain/event"
)

// ConnSink is the routing-side handle of one live connection.
// The transport's write loop owns the other end of the channel.
type ConnSink struct {
	Events chan event.DomainEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the delivery router. It only enqueues the event for
// the connection's write loop: acceptance is O(1) and never blocks delivery
// beyond the enqueue itself. A full buffer drops the event (backpressure on
// a slow client must not stall routing).
func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
