package runtime

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/contract"
	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/domain/event"
	apperrors "github.com/rubentanahara/chat-net-8/errors"
)

// composer builds a validated, timestamped message for a room.
// Satisfied by MessageRouter so the coordinator never duplicates
// sanitation or ordering rules for the initial message.
type composer interface {
	Compose(room domain.Room, senderID, content string) (domain.Message, error)
}

// RoomCoordinator owns the room state machine:
//
//	Pending --accept--> Active --end--> Ended
//	Pending --end--> Ended  (requestor cancels before acceptance)
//
// Every mutation on a given room runs inside that room's keyed lock, so
// concurrent Accept calls resolve to exactly one winner and timestamps
// stay ordered. Operations on different rooms do not contend.
type RoomCoordinator struct {
	log            *slog.Logger
	locks          *KeyedLocks
	rooms          contract.IRoomRepository
	messages       contract.IMessageRepository
	composer       composer
	emitter        *Emitter
	maxActiveRooms int
	listLimit      int
}

func NewRoomCoordinator(log *slog.Logger, locks *KeyedLocks, rooms contract.IRoomRepository,
	messages contract.IMessageRepository, composer composer, emitter *Emitter,
	maxActiveRooms, listLimit int) *RoomCoordinator {
	return &RoomCoordinator{
		log:            log,
		locks:          locks,
		rooms:          rooms,
		messages:       messages,
		composer:       composer,
		emitter:        emitter,
		maxActiveRooms: maxActiveRooms,
		listLimit:      listLimit,
	}
}

// CreateRequest opens a Pending room for the requestor. A non-empty initial
// message is validated before anything is persisted, then stored as the
// room's first message. Everyone connected is notified so idle listeners
// can pick the request up.
func (c *RoomCoordinator) CreateRequest(ctx context.Context, requestorID, initialMessage string) (domain.Room, error) {
	if requestorID == "" {
		return domain.Room{}, apperrors.Validation("requestor identity is required")
	}

	active, err := c.rooms.CountActiveForUser(requestorID)
	if err != nil {
		return domain.Room{}, err
	}
	if active >= c.maxActiveRooms {
		return domain.Room{}, apperrors.CapacityExceeded("requestor %s already has %d active rooms", requestorID, active)
	}

	room := domain.NewRoom(requestorID, time.Now().UTC())

	var first *domain.Message
	if strings.TrimSpace(initialMessage) != "" {
		message, err := c.composer.Compose(*room, requestorID, initialMessage)
		if err != nil {
			return domain.Room{}, err
		}
		first = &message
	}

	if err := c.rooms.Save(*room); err != nil {
		return domain.Room{}, err
	}
	if first != nil {
		if err := c.messages.Store(*first); err != nil {
			return domain.Room{}, err
		}
	}

	c.emitter.Emit(event.NewChatRequest{Room: *room})
	c.log.Info("Chat request created", "room_id", room.ID, "requestor", requestorID)
	return *room, nil
}

// Accept claims a Pending room for the listener. Concurrent accepts on the
// same room serialize on the room lock; the loser re-reads an Active room
// and fails the transition.
func (c *RoomCoordinator) Accept(ctx context.Context, roomID uuid.UUID, listenerID string) (domain.Room, error) {
	if listenerID == "" {
		return domain.Room{}, apperrors.Validation("listener identity is required")
	}

	release, err := c.locks.Acquire(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	defer release()

	room, err := c.rooms.GetByID(roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if room.RequestorID == listenerID {
		return domain.Room{}, apperrors.Validation("requestor cannot accept their own request")
	}
	if err := room.Accept(listenerID); err != nil {
		return domain.Room{}, err
	}
	if err := c.rooms.Save(room); err != nil {
		return domain.Room{}, err
	}

	c.emitter.Emit(event.ChatAccepted{Room: room})
	c.log.Info("Chat request accepted", "room_id", room.ID, "listener", listenerID)
	return room, nil
}

// End closes the room from any non-Ended state and records the end time.
func (c *RoomCoordinator) End(ctx context.Context, roomID uuid.UUID, reason string) error {
	release, err := c.locks.Acquire(ctx, roomID)
	if err != nil {
		return err
	}
	defer release()

	room, err := c.rooms.GetByID(roomID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := room.End(now); err != nil {
		return err
	}
	if err := c.rooms.Save(room); err != nil {
		return err
	}

	c.emitter.Emit(event.ChatEnded{RoomID: room.ID, Reason: reason, EndedAt: now, To: room.Participants()})
	c.log.Info("Chat ended", "room_id", room.ID, "reason", reason)
	return nil
}

func (c *RoomCoordinator) GetByID(roomID uuid.UUID) (domain.Room, error) {
	return c.rooms.GetByID(roomID)
}

// ListPending returns open requests, newest first, bounded.
func (c *RoomCoordinator) ListPending() ([]domain.Room, error) {
	return c.rooms.ListByStatus(domain.StatusPending, c.listLimit)
}

// ListActiveForUser returns the user's running conversations, newest first, bounded.
func (c *RoomCoordinator) ListActiveForUser(userID string) ([]domain.Room, error) {
	return c.rooms.ListActiveForUser(userID, c.listLimit)
}
