package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/domain/event"
	apperrors "github.com/rubentanahara/chat-net-8/errors"
)

func Test_CreateRequest_Starts_Pending_With_First_Message(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	// When alice opens a request with an initial message
	room, err := o.CreateRequest(ctx, "alice", "need help")
	req.NoError(err)

	// Then the room is pending, owned by alice
	req.Equal(domain.StatusPending, room.Status)
	req.Equal("alice", room.RequestorID)
	req.Empty(room.ListenerID)

	// And the message is already part of the stored window
	stored, err := o.GetByID(room.ID)
	req.NoError(err)
	req.Equal(domain.StatusPending, stored.Status)

	pending, err := o.ListPending()
	req.NoError(err)
	req.Len(pending, 1)

	// Everyone connected hears about the new request
	events := drainEvents(o)
	req.Len(events, 1)
	push, ok := events[0].(event.NewChatRequest)
	req.True(ok)
	req.Equal(room.ID, push.Room.ID)
	req.Nil(push.Recipients())
}

func Test_CreateRequest_Without_Message_Stores_Nothing(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())

	ctx := context.Background()
	room, err := o.CreateRequest(ctx, "alice", "   ")
	req.NoError(err)
	_, err = o.Accept(ctx, room.ID, "bob")
	req.NoError(err)

	history, err := o.History(room.ID)
	req.NoError(err)
	req.Empty(history)
}

func Test_CreateRequest_Rejects_Empty_Requestor(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())

	_, err := o.CreateRequest(context.Background(), "", "hello")
	req.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func Test_CreateRequest_Caps_Concurrent_Active_Rooms(t *testing.T) {
	req := require.New(t)
	opts := testOptions()
	opts.MaxActiveRooms = 2
	o := newTestOrchestrator(t, opts)
	ctx := context.Background()

	// Given alice already has two active conversations
	for i := 0; i < 2; i++ {
		room, err := o.CreateRequest(ctx, "alice", "help")
		req.NoError(err)
		_, err = o.Accept(ctx, room.ID, "bob")
		req.NoError(err)
	}

	// Then a third request is refused
	_, err := o.CreateRequest(ctx, "alice", "one more")
	req.Error(err)
	req.Equal(apperrors.KindCapacityExceeded, apperrors.KindOf(err))
}

func Test_Accept_Transitions_And_Notifies_Both_Parties(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	room, err := o.CreateRequest(ctx, "alice", "need help")
	req.NoError(err)
	drainEvents(o)

	accepted, err := o.Accept(ctx, room.ID, "bob")
	req.NoError(err)
	req.Equal(domain.StatusActive, accepted.Status)
	req.Equal("bob", accepted.ListenerID)

	events := drainEvents(o)
	req.Len(events, 1)
	push, ok := events[0].(event.ChatAccepted)
	req.True(ok)
	req.ElementsMatch([]string{"alice", "bob"}, push.Recipients())
}

func Test_Accept_Unknown_Room_Is_NotFound(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())

	_, err := o.Accept(context.Background(), uuid.New(), "bob")
	req.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func Test_Requestor_Cannot_Accept_Own_Request(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	room, err := o.CreateRequest(ctx, "alice", "help")
	req.NoError(err)

	_, err = o.Accept(ctx, room.ID, "alice")
	req.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func Test_Concurrent_Accepts_Exactly_One_Winner(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	room, err := o.CreateRequest(ctx, "alice", "help")
	req.NoError(err)

	listeners := []string{"bob", "carol", "dave", "erin", "frank"}
	winners := make(chan string, len(listeners))
	var losses int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, listener := range listeners {
		wg.Add(1)
		go func(listener string) {
			defer wg.Done()
			if _, err := o.Accept(ctx, room.ID, listener); err == nil {
				winners <- listener
			} else {
				require.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))
				mu.Lock()
				losses++
				mu.Unlock()
			}
		}(listener)
	}
	wg.Wait()
	close(winners)

	// Exactly one listener won the race
	req.Len(winners, 1)
	req.EqualValues(len(listeners)-1, losses)

	stored, err := o.GetByID(room.ID)
	req.NoError(err)
	req.Equal(domain.StatusActive, stored.Status)
	req.Equal(<-winners, stored.ListenerID)
}

func Test_End_From_Pending_And_Active(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	// Pending rooms can be canceled by ending them
	pending, err := o.CreateRequest(ctx, "alice", "help")
	req.NoError(err)
	req.NoError(o.End(ctx, pending.ID, "changed my mind"))
	stored, err := o.GetByID(pending.ID)
	req.NoError(err)
	req.Equal(domain.StatusEnded, stored.Status)
	req.NotNil(stored.EndedAt)

	// Ending twice is an invalid transition
	err = o.End(ctx, pending.ID, "again")
	req.Equal(apperrors.KindInvalidTransition, apperrors.KindOf(err))
}

func Test_End_Notifies_Participants(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t, testOptions())
	ctx := context.Background()

	room, err := o.CreateRequest(ctx, "alice", "help")
	req.NoError(err)
	_, err = o.Accept(ctx, room.ID, "bob")
	req.NoError(err)
	drainEvents(o)

	req.NoError(o.End(ctx, room.ID, "all done"))

	events := drainEvents(o)
	req.Len(events, 1)
	push, ok := events[0].(event.ChatEnded)
	req.True(ok)
	req.Equal("all done", push.Reason)
	req.ElementsMatch([]string{"alice", "bob"}, push.Recipients())
}
