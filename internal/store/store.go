package store

import (
	"lucas/internal/types"
)

// SessionStore is the durable client-side mirror of chat state: the
// session list under one key, and one message list per session id. It is
// a cache, not the owner — the controller's in-memory state wins.
type SessionStore interface {
	// LoadSessions returns the persisted session list; an absent list
	// reads as empty.
	LoadSessions() ([]types.ChatSession, error)
	SaveSessions(sessions []types.ChatSession) error
	// LoadMessages reports a cache miss distinctly (ok=false) so the
	// caller can fall back to the network.
	LoadMessages(sessionID string) ([]types.Message, bool, error)
	SaveMessages(sessionID string, messages []types.Message) error
	DeleteMessages(sessionID string) error
	Close() error
}
