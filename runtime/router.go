package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/contract"
	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/domain/event"
	apperrors "github.com/rubentanahara/chat-net-8/errors"
	"github.com/rubentanahara/chat-net-8/moderation"
)

// MessageRouter validates, stores, and fans out chat messages.
//
// Appends for one room run under the room's keyed lock, which is what makes
// server-assigned timestamps non-decreasing per room. Delivery happens
// through the event pipeline and is best effort: an offline peer simply
// misses the push and reloads via History on reconnect.
type MessageRouter struct {
	log              *slog.Logger
	locks            *KeyedLocks
	rooms            contract.IRoomRepository
	messages         contract.IMessageRepository
	moderator        *moderation.Moderator
	emitter          *Emitter
	maxContentLength int
	roomMessageCap   int

	// lastSeen is process-local: roomID -> identity -> catch-up time.
	// Seen marks do not survive restarts; messages themselves do.
	seenMu   sync.RWMutex
	lastSeen map[uuid.UUID]map[string]time.Time
}

func NewMessageRouter(log *slog.Logger, locks *KeyedLocks, rooms contract.IRoomRepository,
	messages contract.IMessageRepository, moderator *moderation.Moderator, emitter *Emitter,
	maxContentLength, roomMessageCap int) *MessageRouter {
	return &MessageRouter{
		log:              log,
		locks:            locks,
		rooms:            rooms,
		messages:         messages,
		moderator:        moderator,
		emitter:          emitter,
		maxContentLength: maxContentLength,
		roomMessageCap:   roomMessageCap,
		lastSeen:         make(map[uuid.UUID]map[string]time.Time),
	}
}

// Compose sanitizes and censors raw content, then builds a message whose
// timestamp is never earlier than the room's newest stored message.
func (r *MessageRouter) Compose(room domain.Room, senderID, content string) (domain.Message, error) {
	clean := domain.Sanitize(content)
	if clean == "" {
		return domain.Message{}, apperrors.Validation("message content is empty")
	}
	if len([]rune(clean)) > r.maxContentLength {
		return domain.Message{}, apperrors.Validation("message exceeds %d characters", r.maxContentLength)
	}
	clean = r.moderator.Censor(clean)

	at := time.Now().UTC()
	latest, found, err := r.messages.LatestTimestamp(room.ID)
	if err != nil {
		return domain.Message{}, err
	}
	if found && at.Before(latest) {
		at = latest
	}

	return domain.Message{
		ID:        uuid.New(),
		RoomID:    room.ID,
		SenderID:  senderID,
		Content:   clean,
		CreatedAt: at,
	}, nil
}

// Send appends a message to the room and notifies both participants.
func (r *MessageRouter) Send(ctx context.Context, roomID uuid.UUID, senderID, content string) (domain.Message, error) {
	release, err := r.locks.Acquire(ctx, roomID)
	if err != nil {
		return domain.Message{}, err
	}
	defer release()

	room, err := r.rooms.GetByID(roomID)
	if err != nil {
		return domain.Message{}, err
	}
	if room.Status == domain.StatusEnded {
		return domain.Message{}, apperrors.InvalidState("room %s has ended", roomID)
	}
	if !room.HasParticipant(senderID) {
		return domain.Message{}, apperrors.Validation("sender %s is not a participant of room %s", senderID, roomID)
	}

	count, err := r.messages.CountByRoom(roomID)
	if err != nil {
		return domain.Message{}, err
	}
	if count >= r.roomMessageCap {
		return domain.Message{}, apperrors.CapacityExceeded("room %s reached its %d message cap", roomID, r.roomMessageCap)
	}

	message, err := r.Compose(room, senderID, content)
	if err != nil {
		return domain.Message{}, err
	}
	if err := r.messages.Store(message); err != nil {
		return domain.Message{}, err
	}

	r.emitter.Emit(event.ReceiveMessage{Message: message, To: room.Participants()})
	return message, nil
}

// History returns the room's retained messages, oldest first. A missing or
// still-Pending room yields an empty slice rather than an error, so probing
// a room ID reveals nothing. Ended rooms keep their transcript readable.
func (r *MessageRouter) History(roomID uuid.UUID) ([]domain.Message, error) {
	room, err := r.rooms.GetByID(roomID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if room.Status == domain.StatusPending {
		return nil, nil
	}

	messages, err := r.messages.ListByRoom(roomID, r.roomMessageCap)
	if err != nil {
		return nil, err
	}
	return r.flagSeen(room, messages), nil
}

// MarkSeen records that userID caught up on the room and tells the
// counterpart. The mark itself lives only in this process.
func (r *MessageRouter) MarkSeen(ctx context.Context, roomID uuid.UUID, userID string) error {
	room, err := r.rooms.GetByID(roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(userID) {
		return apperrors.Validation("user %s is not a participant of room %s", userID, roomID)
	}

	r.seenMu.Lock()
	marks, ok := r.lastSeen[roomID]
	if !ok {
		marks = make(map[string]time.Time)
		r.lastSeen[roomID] = marks
	}
	marks[userID] = time.Now().UTC()
	r.seenMu.Unlock()

	if other := room.Counterpart(userID); other != "" {
		r.emitter.Emit(event.MessagesSeen{RoomID: roomID, UserID: userID, To: []string{other}})
	}
	return nil
}

// flagSeen marks each message whose recipient has caught up past it.
func (r *MessageRouter) flagSeen(room domain.Room, messages []domain.Message) []domain.Message {
	r.seenMu.RLock()
	marks := r.lastSeen[room.ID]
	r.seenMu.RUnlock()
	if len(marks) == 0 {
		return messages
	}
	for i, message := range messages {
		recipient := room.Counterpart(message.SenderID)
		if recipient == "" {
			continue
		}
		if seenAt, ok := marks[recipient]; ok && !message.CreatedAt.After(seenAt) {
			messages[i].Seen = true
		}
	}
	return messages
}

// ForgetRoom drops the process-local seen marks for an ended room.
func (r *MessageRouter) ForgetRoom(roomID uuid.UUID) {
	r.seenMu.Lock()
	delete(r.lastSeen, roomID)
	r.seenMu.Unlock()
}
