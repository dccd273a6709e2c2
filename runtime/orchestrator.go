// Package runtime hosts the session-coordination core: presence, the room
// state machine, message routing, and the push pipeline. It orchestrates
// the system without containing transport or storage details.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/contract"
	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/domain/event"
	apperrors "github.com/rubentanahara/chat-net-8/errors"
	"github.com/rubentanahara/chat-net-8/moderation"
	"github.com/rubentanahara/chat-net-8/runtime/workers"
)

// Options carries the tunables the orchestrator needs from configuration.
type Options struct {
	BufferSize       int
	LockTimeout      time.Duration
	TypingTTL        time.Duration
	SweepInterval    time.Duration
	MetricInterval   time.Duration
	RestartInterval  time.Duration
	MaxContentLength int
	RoomMessageCap   int
	MaxActiveRooms   int
	ListLimit        int
}

// Orchestrator wires the coordinator, router, and presence registry to the
// supervised worker pipeline, and is the single entry point the gateway
// talks to.
type Orchestrator struct {
	log         *slog.Logger
	registry    *Registry
	coordinator *RoomCoordinator
	router      *MessageRouter
	emitter     *Emitter
	supervisor  contract.ISupervisor
	rooms       contract.IRoomRepository
	typingTTL   time.Duration
}

func NewOrchestrator(log *slog.Logger, rooms contract.IRoomRepository,
	messages contract.IMessageRepository, moderator *moderation.Moderator, opts Options) *Orchestrator {
	registry := NewRegistry()
	emitter := NewEmitter(log, opts.BufferSize)
	locks := NewKeyedLocks(opts.LockTimeout)
	router := NewMessageRouter(log, locks, rooms, messages, moderator, emitter,
		opts.MaxContentLength, opts.RoomMessageCap)
	coordinator := NewRoomCoordinator(log, locks, rooms, messages, router, emitter,
		opts.MaxActiveRooms, opts.ListLimit)

	o := &Orchestrator{
		log:         log,
		registry:    registry,
		coordinator: coordinator,
		router:      router,
		emitter:     emitter,
		rooms:       rooms,
		typingTTL:   opts.TypingTTL,
	}

	supervisor := workers.NewSupervisor(log, opts.RestartInterval)
	supervisor.Add(
		workers.NewEventFanout(log, emitter.Events(), registry),
		workers.NewTypingSweeper(log, registry, o, emitter.Emit, opts.SweepInterval),
		workers.NewTelemetryWorker(log, emitter.Events(), opts.MetricInterval),
	)
	o.supervisor = supervisor
	return o
}

// Start runs the push pipeline until ctx is canceled. It blocks, so callers
// run it in its own goroutine (main does).
func (o *Orchestrator) Start(ctx context.Context) error {
	o.log.Info("Starting orchestrator workers")
	o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}

// Connect binds a live connection under the claimed identity.
func (o *Orchestrator) Connect(identity string, sink contract.EventSink) {
	o.registry.Bind(identity, sink)
	o.log.Info("Connection bound", "identity", identity)
}

// Disconnect unbinds the connection. When the identity's last connection
// goes away its typing markers are cleared and each affected counterpart
// is notified exactly once.
func (o *Orchestrator) Disconnect(identity string, sink contract.EventSink) {
	o.registry.Unbind(identity, sink)
	if o.registry.Online(identity) {
		return
	}
	for _, roomID := range o.registry.ClearTypingFor(identity) {
		if other, ok := o.Counterpart(contract.TypingEntry{RoomID: roomID, Identity: identity}); ok {
			o.emitter.Emit(event.UserTypingStatus{RoomID: roomID, UserID: identity, IsTyping: false, To: []string{other}})
		}
	}
	o.log.Info("Connection unbound", "identity", identity)
}

func (o *Orchestrator) CreateRequest(ctx context.Context, requestorID, initialMessage string) (domain.Room, error) {
	return o.coordinator.CreateRequest(ctx, requestorID, initialMessage)
}

func (o *Orchestrator) Accept(ctx context.Context, roomID uuid.UUID, listenerID string) (domain.Room, error) {
	return o.coordinator.Accept(ctx, roomID, listenerID)
}

// End closes the room and drops the ephemeral per-room state held here:
// typing markers and seen marks die with the conversation.
func (o *Orchestrator) End(ctx context.Context, roomID uuid.UUID, reason string) error {
	room, err := o.coordinator.GetByID(roomID)
	if err != nil {
		return err
	}
	if err := o.coordinator.End(ctx, roomID, reason); err != nil {
		return err
	}
	for _, participant := range room.Participants() {
		o.registry.ClearTyping(roomID, participant)
	}
	o.router.ForgetRoom(roomID)
	return nil
}

func (o *Orchestrator) GetByID(roomID uuid.UUID) (domain.Room, error) {
	return o.coordinator.GetByID(roomID)
}

func (o *Orchestrator) ListPending() ([]domain.Room, error) {
	return o.coordinator.ListPending()
}

func (o *Orchestrator) ListActiveForUser(userID string) ([]domain.Room, error) {
	return o.coordinator.ListActiveForUser(userID)
}

func (o *Orchestrator) Send(ctx context.Context, roomID uuid.UUID, senderID, content string) (domain.Message, error) {
	return o.router.Send(ctx, roomID, senderID, content)
}

func (o *Orchestrator) History(roomID uuid.UUID) ([]domain.Message, error) {
	return o.router.History(roomID)
}

func (o *Orchestrator) MarkSeen(ctx context.Context, roomID uuid.UUID, userID string) error {
	return o.router.MarkSeen(ctx, roomID, userID)
}

// UpdateTyping refreshes or clears the typing marker and relays the signal
// to the counterpart. The deadline model means a client only has to keep
// sending signals while the user types; silence expires on its own.
func (o *Orchestrator) UpdateTyping(ctx context.Context, roomID uuid.UUID, userID string, isTyping bool) error {
	room, err := o.rooms.GetByID(roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(userID) {
		return apperrors.Validation("user %s is not a participant of room %s", userID, roomID)
	}
	other := room.Counterpart(userID)
	if other == "" {
		// Nobody to notify in a Pending room.
		return nil
	}

	if isTyping {
		o.registry.SetTyping(roomID, userID, time.Now().UTC().Add(o.typingTTL))
	} else if !o.registry.ClearTyping(roomID, userID) {
		// Already cleared, the counterpart was told once.
		return nil
	}

	o.emitter.Emit(event.UserTypingStatus{RoomID: roomID, UserID: userID, IsTyping: isTyping, To: []string{other}})
	return nil
}

// Counterpart resolves who sits across a typing entry's identity.
func (o *Orchestrator) Counterpart(entry contract.TypingEntry) (string, bool) {
	room, err := o.rooms.GetByID(entry.RoomID)
	if err != nil {
		return "", false
	}
	other := room.Counterpart(entry.Identity)
	return other, other != ""
}

// Registry exposes presence for the gateway's connection lifecycle.
func (o *Orchestrator) Registry() *Registry { return o.registry }
