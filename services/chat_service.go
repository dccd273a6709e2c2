//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/contract"
	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/runtime"
)

// IChatService is the operation surface the gateway exposes to clients,
// plus the connection lifecycle hooks it drives itself.
type IChatService interface {
	Connect(identity string, sink contract.EventSink)
	Disconnect(identity string, sink contract.EventSink)

	CreateChatRequest(ctx context.Context, requestorID, initialMessage string) (domain.Room, error)
	AcceptChatRequest(ctx context.Context, roomID uuid.UUID, listenerID string) (domain.Room, error)
	SendMessage(ctx context.Context, roomID uuid.UUID, senderID, content string) (domain.Message, error)
	EndChat(ctx context.Context, roomID uuid.UUID, reason string) error
	GetPendingRequests() ([]domain.Room, error)
	GetActiveChats(userID string) ([]domain.Room, error)
	GetChatHistory(roomID uuid.UUID) ([]domain.Message, error)
	GetChatRoomByID(roomID uuid.UUID) (domain.Room, error)
	UpdateTypingStatus(ctx context.Context, roomID uuid.UUID, userID string, isTyping bool) error
	MarkMessagesAsSeen(ctx context.Context, roomID uuid.UUID, userID string) error
}

// ChatService is a thin facade over the orchestrator; it exists so the
// gateway depends on an interface that tests can fake.
type ChatService struct {
	orchestrator *runtime.Orchestrator
}

func NewChatService(o *runtime.Orchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) Connect(identity string, sink contract.EventSink) {
	s.orchestrator.Connect(identity, sink)
}

func (s *ChatService) Disconnect(identity string, sink contract.EventSink) {
	s.orchestrator.Disconnect(identity, sink)
}

func (s *ChatService) CreateChatRequest(ctx context.Context, requestorID, initialMessage string) (domain.Room, error) {
	return s.orchestrator.CreateRequest(ctx, requestorID, initialMessage)
}

func (s *ChatService) AcceptChatRequest(ctx context.Context, roomID uuid.UUID, listenerID string) (domain.Room, error) {
	return s.orchestrator.Accept(ctx, roomID, listenerID)
}

func (s *ChatService) SendMessage(ctx context.Context, roomID uuid.UUID, senderID, content string) (domain.Message, error) {
	return s.orchestrator.Send(ctx, roomID, senderID, content)
}

func (s *ChatService) EndChat(ctx context.Context, roomID uuid.UUID, reason string) error {
	return s.orchestrator.End(ctx, roomID, reason)
}

func (s *ChatService) GetPendingRequests() ([]domain.Room, error) {
	return s.orchestrator.ListPending()
}

func (s *ChatService) GetActiveChats(userID string) ([]domain.Room, error) {
	return s.orchestrator.ListActiveForUser(userID)
}

func (s *ChatService) GetChatHistory(roomID uuid.UUID) ([]domain.Message, error) {
	return s.orchestrator.History(roomID)
}

func (s *ChatService) GetChatRoomByID(roomID uuid.UUID) (domain.Room, error) {
	return s.orchestrator.GetByID(roomID)
}

func (s *ChatService) UpdateTypingStatus(ctx context.Context, roomID uuid.UUID, userID string, isTyping bool) error {
	return s.orchestrator.UpdateTyping(ctx, roomID, userID, isTyping)
}

func (s *ChatService) MarkMessagesAsSeen(ctx context.Context, roomID uuid.UUID, userID string) error {
	return s.orchestrator.MarkSeen(ctx, roomID, userID)
}
