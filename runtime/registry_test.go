package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rubentanahara/chat-net-8/domain/event"
)

type nullSink struct{ id int }

func (s *nullSink) Consume(ctx context.Context, e event.DomainEvent) error { return nil }

func Test_Bind_One_Identity_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &nullSink{}

	// Given nobody is connected
	req.Empty(registry.Identities())

	// When an identity binds a connection
	registry.Bind("alice", sink)

	// Then the group resolves to that connection
	req.True(registry.Online("alice"))
	req.Len(registry.GroupFor("alice"), 1)
	req.Contains(registry.GroupFor("alice"), sink)
}

func Test_Bind_Is_Idempotent_And_Supports_Multi_Tab(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	tab1 := &nullSink{id: 1}
	tab2 := &nullSink{id: 2}

	registry.Bind("alice", tab1)
	registry.Bind("alice", tab1) // repeated bind of the same handle
	registry.Bind("alice", tab2)

	req.Len(registry.GroupFor("alice"), 2)
}

func Test_Unbind_Last_Connection_Takes_Identity_Offline(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	tab1 := &nullSink{id: 1}
	tab2 := &nullSink{id: 2}
	registry.Bind("alice", tab1)
	registry.Bind("alice", tab2)

	// When one tab goes away the identity stays online
	registry.Unbind("alice", tab1)
	req.True(registry.Online("alice"))

	// And the last one leaving takes the group with it
	registry.Unbind("alice", tab2)
	req.False(registry.Online("alice"))
	req.Nil(registry.GroupFor("alice"))
	req.Empty(registry.Identities())
}

func Test_Typing_Markers_Expire(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := uuid.New()
	now := time.Now().UTC()

	registry.SetTyping(roomID, "alice", now.Add(100*time.Millisecond))

	// Before the deadline nothing is harvested
	req.Empty(registry.ExpireTyping(now))

	// Past the deadline the marker comes back exactly once
	expired := registry.ExpireTyping(now.Add(200 * time.Millisecond))
	req.Len(expired, 1)
	req.Equal("alice", expired[0].Identity)
	req.Equal(roomID, expired[0].RoomID)
	req.Empty(registry.ExpireTyping(now.Add(300 * time.Millisecond)))
}

func Test_ClearTypingFor_Reports_Every_Room_Once(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	room1 := uuid.New()
	room2 := uuid.New()
	deadline := time.Now().UTC().Add(time.Hour)

	// Given alice is typing in two rooms
	registry.SetTyping(room1, "alice", deadline)
	registry.SetTyping(room2, "alice", deadline)
	registry.SetTyping(room1, "bob", deadline)

	// When her markers are cleared on disconnect
	rooms := registry.ClearTypingFor("alice")

	// Then both rooms are reported, and bob's marker survives
	req.ElementsMatch([]uuid.UUID{room1, room2}, rooms)
	req.Empty(registry.ClearTypingFor("alice"))
	req.True(registry.ClearTyping(room1, "bob"))
}
