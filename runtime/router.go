package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-direct/contract"
	"chat-direct/domain/event"
)

// Router pushes persisted-message events to the recipient's live connection.
//
// It provides best-effort delivery with no guarantees regarding ordering
// across users, durability, or retries. Router is not a message broker:
// a recipient without a live connection simply misses the push and catches
// up from the message store on the next fetch.
//
// Router is safe for concurrent use by multiple goroutines.
type Router struct {
	log         *slog.Logger
	presence    contract.IPresence
	outbound    chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewRouter(log *slog.Logger, presence contract.IPresence,
	bufferSize int, sinkTimeout time.Duration) *Router {
	return &Router{
		log:         log,
		presence:    presence,
		outbound:    make(chan event.DomainEvent, bufferSize),
		sinkTimeout: sinkTimeout,
	}
}

// Dispatch hands an event to the delivery loop without blocking the caller.
// The send request's response path never waits on push delivery, so a full
// channel drops the event with a warning instead of applying backpressure.
func (r *Router) Dispatch(e event.DomainEvent) {
	select {
	case r.outbound <- e:
	default:
		r.log.Warn(fmt.Sprintf("Outbound channel full, dropping push for %s", e.Receiver()))
	}
}

// Run is the supervised delivery loop. One event in, at most one push out.
func (r *Router) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.log.Debug("Stopping delivery router")
			return ctx.Err()
		case e, ok := <-r.outbound:
			if !ok {
				return nil
			}
			r.deliver(ctx, e)
		}
	}
}

// deliver makes exactly one push attempt. A recipient without a live
// connection is a silent miss, never an error.
func (r *Router) deliver(ctx context.Context, e event.DomainEvent) {
	sink, ok := r.presence.Lookup(e.Receiver())
	if !ok {
		r.log.Debug("Recipient offline, push skipped", "user_id", e.Receiver())
		return
	}

	sinkCtx, cancel := context.WithTimeout(ctx, r.sinkTimeout)
	defer cancel()

	if err := sink.Consume(sinkCtx, e); err != nil {
		r.log.Warn("Push delivery failed",
			"user_id", e.Receiver(),
			"error", err)
	}
}
