package runtime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/domain/event"
	apperrors "github.com/rubentanahara/chat-net-8/errors"
)

// startChat creates an accepted alice/bob room and clears the event buffer.
func startChat(t *testing.T, o *Orchestrator) domain.Room {
	t.Helper()
	ctx := context.Background()
	room, err := o.CreateRequest(ctx, "alice", "")
	require.NoError(t, err)
	accepted, err := o.Accept(ctx, room.ID, "bob")
	require.NoError(t, err)
	drainEvents(o)
	return accepted
}

func Test_Send_Sanitizes_Content(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	room := startChat(t, o)

	message, err := o.Send(context.Background(), room.ID, "alice", "  Hello   world!\x07")
	req.NoError(err)
	req.Equal("Hello world!", message.Content)

	history, err := o.History(room.ID)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("Hello world!", history[0].Content)
}

func Test_Send_Censors_Forbidden_Words(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	room := startChat(t, o)

	message, err := o.Send(context.Background(), room.ID, "alice", "you absolute idiot")
	req.NoError(err)
	req.Equal("you absolute *****", message.Content)
}

func Test_Send_Rejects_Empty_And_Oversized_Content(t *testing.T) {
	req := require.New(t)
	opts := testOptions()
	opts.MaxContentLength = 10
	o := newTestOrchestrator(t, opts)
	room := startChat(t, o)
	ctx := context.Background()

	_, err := o.Send(ctx, room.ID, "alice", " \x07\t ")
	req.Equal(apperrors.KindValidation, apperrors.KindOf(err))

	_, err = o.Send(ctx, room.ID, "alice", "this is definitely too long")
	req.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func Test_Send_Rejects_Non_Participants(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	room := startChat(t, o)

	_, err := o.Send(context.Background(), room.ID, "mallory", "let me in")
	req.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func Test_Send_On_Unknown_Or_Ended_Room(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	_, err := o.Send(ctx, uuid.New(), "alice", "hello?")
	req.Equal(apperrors.KindNotFound, apperrors.KindOf(err))

	room := startChat(t, o)
	req.NoError(o.End(ctx, room.ID, "done"))
	_, err = o.Send(ctx, room.ID, "alice", "one more thing")
	req.Equal(apperrors.KindInvalidState, apperrors.KindOf(err))
}

func Test_Send_Timestamps_Are_Non_Decreasing(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	room := startChat(t, o)
	ctx := context.Background()

	var previous time.Time
	for i := 0; i < 20; i++ {
		message, err := o.Send(ctx, room.ID, "alice", fmt.Sprintf("message %d", i))
		req.NoError(err)
		req.False(message.CreatedAt.Before(previous), "timestamp went backwards at message %d", i)
		previous = message.CreatedAt
	}

	history, err := o.History(room.ID)
	req.NoError(err)
	req.Len(history, 20)
	for i := 1; i < len(history); i++ {
		req.False(history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}
}

func Test_Send_Rejects_At_Room_Cap_But_History_Survives(t *testing.T) {
	req := require.New(t)
	opts := testOptions()
	opts.RoomMessageCap = 3
	o := newTestOrchestrator(t, opts)
	room := startChat(t, o)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := o.Send(ctx, room.ID, "alice", fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	_, err := o.Send(ctx, room.ID, "alice", "overflow")
	req.Equal(apperrors.KindCapacityExceeded, apperrors.KindOf(err))

	// The retained window is still fully readable
	history, err := o.History(room.ID)
	req.NoError(err)
	req.Len(history, 3)
}

func Test_Send_Fans_Out_To_Both_Participants(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	room := startChat(t, o)

	_, err := o.Send(context.Background(), room.ID, "bob", "hi alice")
	req.NoError(err)

	events := drainEvents(o)
	req.Len(events, 1)
	push, ok := events[0].(event.ReceiveMessage)
	req.True(ok)
	req.Equal("bob", push.Message.SenderID)
	req.Equal("hi alice", push.Message.Content)
	req.ElementsMatch([]string{"alice", "bob"}, push.Recipients())
}

func Test_History_Hides_Missing_And_Pending_Rooms(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	// Unknown room: silent empty, no existence leak
	history, err := o.History(uuid.New())
	req.NoError(err)
	req.Empty(history)

	// Pending room: same policy
	room, err := o.CreateRequest(ctx, "alice", "need help")
	req.NoError(err)
	history, err = o.History(room.ID)
	req.NoError(err)
	req.Empty(history)

	// Once active the transcript opens up
	_, err = o.Accept(ctx, room.ID, "bob")
	req.NoError(err)
	history, err = o.History(room.ID)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("need help", history[0].Content)
}

func Test_MarkSeen_Flags_History_And_Notifies_Counterpart(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	room := startChat(t, o)
	ctx := context.Background()

	_, err := o.Send(ctx, room.ID, "alice", "are you there?")
	req.NoError(err)
	drainEvents(o)

	// When bob marks the room as seen
	req.NoError(o.MarkSeen(ctx, room.ID, "bob"))

	// Then alice is notified
	events := drainEvents(o)
	req.Len(events, 1)
	push, ok := events[0].(event.MessagesSeen)
	req.True(ok)
	req.Equal("bob", push.UserID)
	req.Equal([]string{"alice"}, push.Recipients())

	// And alice's message now reads as seen
	history, err := o.History(room.ID)
	req.NoError(err)
	req.Len(history, 1)
	req.True(history[0].Seen)

	// A message sent afterwards is not flagged
	_, err = o.Send(ctx, room.ID, "alice", "still there?")
	req.NoError(err)
	history, err = o.History(room.ID)
	req.NoError(err)
	req.False(history[1].Seen)
}

func Test_MarkSeen_Validates_Room_And_Participant(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	req.Equal(apperrors.KindNotFound, apperrors.KindOf(o.MarkSeen(ctx, uuid.New(), "bob")))

	room := startChat(t, o)
	req.Equal(apperrors.KindValidation, apperrors.KindOf(o.MarkSeen(ctx, room.ID, "mallory")))
}
