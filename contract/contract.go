//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming on the interface.
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

// EventSink is the push side of a live connection.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IPresence is the broadcast-group registry: identity -> live sinks,
// plus the ephemeral typing state per room.
type IPresence interface {
	Bind(identity string, sink EventSink)
	Unbind(identity string, sink EventSink)
	GroupFor(identity string) []EventSink
	Identities() []string
	Online(identity string) bool

	SetTyping(roomID uuid.UUID, identity string, deadline time.Time)
	ClearTyping(roomID uuid.UUID, identity string) bool
	ClearTypingFor(identity string) []uuid.UUID
	ExpireTyping(now time.Time) []TypingEntry
}

// TypingEntry identifies one (room, identity) typing marker.
type TypingEntry struct {
	RoomID   uuid.UUID
	Identity string
}

// IRoomRepository is the durable store for room records.
// Listings are bounded and ordered newest-first.
type IRoomRepository interface {
	Save(room domain.Room) error
	GetByID(id uuid.UUID) (domain.Room, error)
	ListByStatus(status domain.Status, limit int) ([]domain.Room, error)
	ListActiveForUser(userID string, limit int) ([]domain.Room, error)
	CountActiveForUser(userID string) (int, error)
}

// IMessageRepository is the durable store for a room's message window.
type IMessageRepository interface {
	Store(message domain.Message) error
	ListByRoom(roomID uuid.UUID, limit int) ([]domain.Message, error)
	CountByRoom(roomID uuid.UUID) (int, error)
	LatestTimestamp(roomID uuid.UUID) (time.Time, bool, error)
}
