package runtime

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/contract"
)

// Registry tracks presence: which identities currently have live
// connections, and who is typing in which room.
//
// An identity may hold several sinks at once (multi-tab); pushes target
// the whole group. Sinks are resolved per push, never cached, so a
// reconnect mid-conversation immediately receives events on the new
// connection. Typing entries carry an expiry deadline refreshed on every
// typing signal and harvested by a periodic sweep.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[contract.EventSink]struct{}
	typing map[uuid.UUID]map[string]time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]map[contract.EventSink]struct{}),
		typing: make(map[uuid.UUID]map[string]time.Time),
	}
}

// Bind registers a sink under the identity's broadcast group.
// Binding the same sink twice is a no-op.
func (r *Registry) Bind(identity string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[identity]
	if !ok {
		group = make(map[contract.EventSink]struct{})
		r.groups[identity] = group
	}
	group[sink] = struct{}{}
}

// Unbind removes the sink from the identity's group. The last sink leaving
// takes the whole group entry with it so the map never leaks identities.
func (r *Registry) Unbind(identity string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[identity]
	if !ok {
		return
	}
	delete(group, sink)
	if len(group) == 0 {
		delete(r.groups, identity)
	}
}

// GroupFor returns the identity's live sinks at this instant.
func (r *Registry) GroupFor(identity string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[identity]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(group))
	for sink := range group {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Identities lists every identity with at least one live connection.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := make([]string, 0, len(r.groups))
	for identity := range r.groups {
		identities = append(identities, identity)
	}
	return identities
}

func (r *Registry) Online(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[identity]
	return ok
}

// SetTyping marks the identity as typing in the room until deadline.
func (r *Registry) SetTyping(roomID uuid.UUID, identity string, deadline time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.typing[roomID]
	if !ok {
		room = make(map[string]time.Time)
		r.typing[roomID] = room
	}
	room[identity] = deadline
}

// ClearTyping removes the typing marker, reporting whether one existed.
func (r *Registry) ClearTyping(roomID uuid.UUID, identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearTypingLocked(roomID, identity)
}

func (r *Registry) clearTypingLocked(roomID uuid.UUID, identity string) bool {
	room, ok := r.typing[roomID]
	if !ok {
		return false
	}
	if _, ok := room[identity]; !ok {
		return false
	}
	delete(room, identity)
	if len(room) == 0 {
		delete(r.typing, roomID)
	}
	return true
}

// ClearTypingFor drops every typing marker the identity holds and
// returns the affected rooms, so counterparts can be notified once each.
func (r *Registry) ClearTypingFor(identity string) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rooms []uuid.UUID
	for roomID, room := range r.typing {
		if _, ok := room[identity]; ok {
			rooms = append(rooms, roomID)
			delete(room, identity)
			if len(room) == 0 {
				delete(r.typing, roomID)
			}
		}
	}
	return rooms
}

// ExpireTyping removes markers whose deadline passed and returns them.
func (r *Registry) ExpireTyping(now time.Time) []contract.TypingEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []contract.TypingEntry
	for roomID, room := range r.typing {
		for identity, deadline := range room {
			if now.After(deadline) {
				expired = append(expired, contract.TypingEntry{RoomID: roomID, Identity: identity})
				delete(room, identity)
			}
		}
		if len(room) == 0 {
			delete(r.typing, roomID)
		}
	}
	return expired
}
