package ws

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/domain/event"
)

// Request is a client-invoked call: {"id":"1","method":"SendMessage","params":{...}}.
// The id is echoed back so clients can match responses to in-flight calls.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// WireError is the structured failure forwarded to clients verbatim.
type WireError struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

type Response struct {
	ID     string     `json:"id"`
	Result any        `json:"result,omitempty"`
	Error  *WireError `json:"error,omitempty"`
}

// Push is a server-initiated event: {"event":"ReceiveMessage","payload":{...}}.
type Push struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type createChatRequestParams struct {
	RequestorID    string `json:"requestor_id" validate:"omitempty,max=64"`
	InitialMessage string `json:"initial_message" validate:"max=4000"`
}

type acceptChatRequestParams struct {
	RoomID     string `json:"room_id" validate:"required,uuid"`
	ListenerID string `json:"listener_id" validate:"omitempty,max=64"`
}

type sendMessageParams struct {
	RoomID   string `json:"room_id" validate:"required,uuid"`
	SenderID string `json:"sender_id" validate:"omitempty,max=64"`
	Content  string `json:"content" validate:"required,max=4000"`
}

type endChatParams struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
	Reason string `json:"reason" validate:"max=200"`
}

type roomIDParams struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
}

type activeChatsParams struct {
	UserID string `json:"user_id" validate:"omitempty,max=64"`
}

type typingStatusParams struct {
	RoomID   string `json:"room_id" validate:"required,uuid"`
	UserID   string `json:"user_id" validate:"omitempty,max=64"`
	IsTyping bool   `json:"is_typing"`
}

type markSeenParams struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
	UserID string `json:"user_id" validate:"omitempty,max=64"`
}

// RoomView is the wire shape of a room.
type RoomView struct {
	ID          string     `json:"id"`
	RequestorID string     `json:"requestor_id"`
	ListenerID  string     `json:"listener_id,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

// MessageView is the wire shape of a message.
type MessageView struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Seen      bool      `json:"seen"`
}

func toRoomView(room domain.Room) RoomView {
	return RoomView{
		ID:          room.ID.String(),
		RequestorID: room.RequestorID,
		ListenerID:  room.ListenerID,
		Status:      string(room.Status),
		CreatedAt:   room.CreatedAt,
		EndedAt:     room.EndedAt,
	}
}

func toRoomViews(rooms []domain.Room) []RoomView {
	return lo.Map(rooms, func(item domain.Room, _ int) RoomView {
		return toRoomView(item)
	})
}

func toMessageView(message domain.Message) MessageView {
	return MessageView{
		ID:        message.ID.String(),
		RoomID:    message.RoomID.String(),
		SenderID:  message.SenderID,
		Content:   message.Content,
		Timestamp: message.CreatedAt,
		Seen:      message.Seen,
	}
}

func toMessageViews(messages []domain.Message) []MessageView {
	return lo.Map(messages, func(item domain.Message, _ int) MessageView {
		return toMessageView(item)
	})
}

// toPush translates a domain event into its wire frame.
func toPush(evt event.DomainEvent) Push {
	switch e := evt.(type) {
	case event.NewChatRequest:
		return Push{Event: e.Name(), Payload: toRoomView(e.Room)}
	case event.ChatAccepted:
		return Push{Event: e.Name(), Payload: toRoomView(e.Room)}
	case event.ReceiveMessage:
		return Push{Event: e.Name(), Payload: toMessageView(e.Message)}
	case event.ChatEnded:
		return Push{Event: e.Name(), Payload: map[string]any{
			"room_id":  e.RoomID.String(),
			"reason":   e.Reason,
			"ended_at": e.EndedAt,
		}}
	case event.UserTypingStatus:
		return Push{Event: e.Name(), Payload: map[string]any{
			"room_id":   e.RoomID.String(),
			"user_id":   e.UserID,
			"is_typing": e.IsTyping,
		}}
	case event.MessagesSeen:
		return Push{Event: e.Name(), Payload: map[string]any{
			"room_id": e.RoomID.String(),
			"user_id": e.UserID,
		}}
	default:
		return Push{Event: evt.Name()}
	}
}
