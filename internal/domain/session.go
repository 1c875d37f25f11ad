package domain

import "time"

// Session represents one assistant conversation: the cart it is bound to
// and its lifecycle state.
type Session struct {
	ID        string
	CartID    string
	Status    SessionStatus
	StartedAt time.Time
	UpdatedAt time.Time
}

// SessionStatus tracks the lifecycle of an assistant session.
type SessionStatus int

const (
	SessionActive SessionStatus = iota
	SessionMuted
	SessionStopped
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionMuted:
		return "muted"
	case SessionStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Role identifies the author of a conversation message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// String returns a human-readable role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Message is one conversation turn. Messages are append-only: once
// recorded they are never edited in place.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}
