package chathub

import (
	"context"
	"errors"

	"penpal/backend/internal/models"
)

var (
	// ErrUnauthenticated rejects a socket opened without a valid identity.
	ErrUnauthenticated = errors.New("chathub: unauthenticated")
	// ErrNotParticipant rejects a socket whose user is not in the room, or whose room does not exist.
	ErrNotParticipant = errors.New("chathub: not a participant of the room")
	// ErrSessionState is returned by Open on a session that was already opened.
	ErrSessionState = errors.New("chathub: session already opened")
)

// Member is anything the Registry can deliver room events to.
type Member interface {
	// MemberID is unique per connection, not per user: one user may hold several sockets.
	MemberID() string
	// Deliver hands an event to the member without blocking. It reports false
	// when the event was dropped (buffer full or member closed).
	Deliver(event models.Event) bool
}

// Registry tracks which members are connected to which room and fans events out to them.
type Registry interface {
	Join(roomID string, member Member)
	// Leave is a no-op for a member that is not joined.
	Leave(roomID string, member Member)
	// Broadcast delivers event to every member of the room except the one
	// whose MemberID equals excludeID. An empty excludeID delivers to all.
	Broadcast(ctx context.Context, roomID string, event models.Event, excludeID string) error
}

// MessageStore is the persistence a Session needs.
type MessageStore interface {
	CreateMessage(ctx context.Context, roomID, senderID, content string) (*models.Message, error)
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)
	MarkRead(ctx context.Context, roomID, userID string, messageIDs []uint) ([]uint, error)
}
