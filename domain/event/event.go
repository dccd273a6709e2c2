// Package event defines the domain events pushed to connected clients.
// Each event names itself for the wire and knows which identities should
// receive it; nil recipients means every connected client.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/domain"
)

type DomainEvent interface {
	// Name is the server-push event name seen by clients.
	Name() string
	// Recipients lists target identities. Nil targets every bound identity.
	Recipients() []string
}

// NewChatRequest announces a freshly created Pending room to everyone,
// so idle listeners can pick it up.
type NewChatRequest struct {
	Room domain.Room
}

func (e NewChatRequest) Name() string         { return "NewChatRequest" }
func (e NewChatRequest) Recipients() []string { return nil }

// ChatAccepted tells both parties the room went Active.
type ChatAccepted struct {
	Room domain.Room
}

func (e ChatAccepted) Name() string         { return "ChatAccepted" }
func (e ChatAccepted) Recipients() []string { return e.Room.Participants() }

// ReceiveMessage carries a stored message to both participants,
// the sender included, so every tab converges on the server's ordering.
type ReceiveMessage struct {
	Message domain.Message
	To      []string
}

func (e ReceiveMessage) Name() string         { return "ReceiveMessage" }
func (e ReceiveMessage) Recipients() []string { return e.To }

// ChatEnded tells both parties the room is closed.
type ChatEnded struct {
	RoomID  uuid.UUID
	Reason  string
	EndedAt time.Time
	To      []string
}

func (e ChatEnded) Name() string         { return "ChatEnded" }
func (e ChatEnded) Recipients() []string { return e.To }

// UserTypingStatus notifies the counterpart that the other side
// started or stopped typing. Best effort, never persisted.
type UserTypingStatus struct {
	RoomID   uuid.UUID
	UserID   string
	IsTyping bool
	To       []string
}

func (e UserTypingStatus) Name() string         { return "UserTypingStatus" }
func (e UserTypingStatus) Recipients() []string { return e.To }

// MessagesSeen notifies the counterpart that userID caught up on the room.
type MessagesSeen struct {
	RoomID uuid.UUID
	UserID string
	To     []string
}

func (e MessagesSeen) Name() string         { return "MessagesSeen" }
func (e MessagesSeen) Recipients() []string { return e.To }
