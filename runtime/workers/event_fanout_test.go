package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rubentanahara/chat-net-8/contract"
	"github.com/rubentanahara/chat-net-8/domain/event"
	"github.com/rubentanahara/chat-net-8/mocks"
)

func TestFanout_TargetedEventReachesEverySinkOfRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockIPresence(ctrl)
	tab1 := mocks.NewMockEventSink(ctrl)
	tab2 := mocks.NewMockEventSink(ctrl)

	evt := event.MessagesSeen{RoomID: uuid.New(), UserID: "alice", To: []string{"bob"}}

	// Given bob online with two tabs
	registry.EXPECT().GroupFor("bob").Return([]contract.EventSink{tab1, tab2})
	tab1.EXPECT().Consume(gomock.Any(), evt).Return(nil)
	tab2.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout := NewEventFanout(slog.Default(), make(chan event.DomainEvent), registry)
	fanout.Fanout(context.Background(), evt)
}

func TestFanout_BroadcastResolvesAllIdentities(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockIPresence(ctrl)
	aliceSink := mocks.NewMockEventSink(ctrl)
	bobSink := mocks.NewMockEventSink(ctrl)

	evt := event.NewChatRequest{}

	// Nil recipients means everyone currently online
	registry.EXPECT().Identities().Return([]string{"alice", "bob"})
	registry.EXPECT().GroupFor("alice").Return([]contract.EventSink{aliceSink})
	registry.EXPECT().GroupFor("bob").Return([]contract.EventSink{bobSink})
	aliceSink.EXPECT().Consume(gomock.Any(), evt).Return(nil)
	bobSink.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout := NewEventFanout(slog.Default(), make(chan event.DomainEvent), registry)
	fanout.Fanout(context.Background(), evt)
}

func TestFanout_OfflineRecipientIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockIPresence(ctrl)

	evt := event.MessagesSeen{RoomID: uuid.New(), UserID: "alice", To: []string{"ghost"}}
	registry.EXPECT().GroupFor("ghost").Return(nil)

	fanout := NewEventFanout(slog.Default(), make(chan event.DomainEvent), registry)
	fanout.Fanout(context.Background(), evt)
}

func TestFanout_RunDrainsChannelUntilCanceled(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockIPresence(ctrl)
	sink := mocks.NewMockEventSink(ctrl)

	delivered := make(chan struct{}, 1)
	registry.EXPECT().GroupFor("bob").Return([]contract.EventSink{sink})
	sink.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			delivered <- struct{}{}
			return nil
		})

	events := make(chan event.DomainEvent, 1)
	fanout := NewEventFanout(slog.Default(), events, registry)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = fanout.Run(ctx)
		close(done)
	}()

	events <- event.MessagesSeen{RoomID: uuid.New(), UserID: "alice", To: []string{"bob"}}

	select {
	case <-delivered:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Fanout should have delivered the queued event")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Fanout should stop when its context is canceled")
	}
}
