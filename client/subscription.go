package client

import (
	"sync"

	"chat-direct/domain"
	"chat-direct/domain/event"
)

// Subscription is the client-side filter for the currently open
// conversation. At most one subscription is active at a time: selecting a
// new peer tears the previous listener down first, so a push can never be
// rendered twice.
type Subscription struct {
	peerID    string
	onMessage func(domain.Message)
}

// subscriptions serializes listener swaps against event dispatch.
type subscriptions struct {
	mu     sync.Mutex
	active *Subscription
}

// Subscribe opens a conversation with the given peer. Any previously active
// listener is replaced atomically; re-subscribing without unsubscribing
// cannot leave two listeners behind.
func (s *subscriptions) Subscribe(peerID string, onMessage func(domain.Message)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{peerID: peerID, onMessage: onMessage}
	s.active = sub
	return sub
}

// Unsubscribe tears down the given subscription if it is still the active
// one. Safe to call on every exit path; tearing down a superseded
// subscription is a no-op so a late cleanup never kills the newer listener.
func (s *subscriptions) Unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == sub {
		s.active = nil
	}
}

// dispatch routes one push event. Only a newMessage from the currently
// selected peer is accepted; everything else is discarded, since switching
// conversations relies on a store re-fetch, not a backlog.
func (s *subscriptions) dispatch(env event.Envelope) {
	if env.Event != event.EventNewMessage {
		return
	}

	s.mu.Lock()
	sub := s.active
	s.mu.Unlock()

	if sub == nil || env.Data.SenderID != sub.peerID {
		return
	}
	sub.onMessage(env.Data)
}
