// Package domain contains core concepts of the direct-messaging system.
// This file defines User entities supplied by the directory.
package domain

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// SidebarEntry is a derived, ephemeral listing row: a contact plus the
// timestamp of the most recent message exchanged with the viewer.
// LastMessageAt is the epoch when no message has ever been exchanged.
type SidebarEntry struct {
	User          User      `json:"user"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}
