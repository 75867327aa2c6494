// Package runtime handles presence tracking and real-time delivery.
// It routes events without containing business logic or domain rules.
package runtime

import (
	"sync"

	"chat-direct/contract"
)

type session struct {
	connID string
	sink   contract.EventSink
}

// Presence is the process-wide map from user id to their single active
// connection. It is created at process start and rebuilt empty on restart:
// presence is inherently transient, so nothing here is persisted.
type Presence struct {
	mu       sync.RWMutex
	sessions map[string]session // user id -> active session
	owners   map[string]string  // conn id -> user id, for the unregister guard
}

func NewPresence() *Presence {
	return &Presence{
		sessions: make(map[string]session),
		owners:   make(map[string]string),
	}
}

// Register associates the user with the connection, replacing any prior
// association for that user (last writer wins). The prior connection, if
// still open, is simply orphaned from routing: it keeps its socket but no
// longer receives pushes.
func (p *Presence) Register(userID, connID string, sink contract.EventSink) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prior, ok := p.sessions[userID]; ok {
		delete(p.owners, prior.connID)
	}
	p.sessions[userID] = session{connID: connID, sink: sink}
	p.owners[connID] = userID
}

// Unregister removes the mapping only if the stored connection id for the
// owning user still equals connID. This guards against the race where a new
// connection registered before the old one's disconnect event arrived:
// the newer mapping must survive. Calling it twice is a no-op.
func (p *Presence) Unregister(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.owners[connID]
	if !ok {
		return
	}
	if current, ok := p.sessions[userID]; ok && current.connID == connID {
		delete(p.sessions, userID)
	}
	delete(p.owners, connID)
}

// Lookup resolves the user's live connection, if any. Pure read.
func (p *Presence) Lookup(userID string) (contract.EventSink, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.sessions[userID]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// Online reports how many users currently have a live connection.
func (p *Presence) Online() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
