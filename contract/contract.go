package contract

import (
	"context"
	"reflect"

	"chat-direct/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker lifecycle
// events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live connection's inbound side. Consume must be quick:
// it enqueues the event for the connection's write loop and never blocks
// past the given context.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IPresence maps a user to their single active connection.
type IPresence interface {
	Register(userID, connID string, sink EventSink)
	Unregister(connID string)
	Lookup(userID string) (EventSink, bool)
}
