// Package domain contains core concepts of the chat broker.
// This file defines the Room aggregate and its lifecycle rules.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/errors"
)

// Status is the closed set of lifecycle states a Room can be in.
// It is serialized to a string only at the storage and wire boundaries.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusEnded   Status = "ENDED"
)

// Room is a two-party conversation between a requestor and a listener.
// ListenerID stays empty until a listener accepts; EndedAt stays nil until
// the room is ended. Once ended, no further transition or append succeeds.
type Room struct {
	ID          uuid.UUID
	RequestorID string
	ListenerID  string
	Status      Status
	CreatedAt   time.Time
	EndedAt     *time.Time
}

// NewRoom creates a Pending room owned by the requestor.
func NewRoom(requestorID string, now time.Time) *Room {
	return &Room{
		ID:          uuid.New(),
		RequestorID: requestorID,
		Status:      StatusPending,
		CreatedAt:   now,
	}
}

// Accept moves the room from Pending to Active and records the listener.
func (r *Room) Accept(listenerID string) error {
	if r.Status != StatusPending {
		return errors.InvalidTransition("room %s is %s, only pending rooms can be accepted", r.ID, r.Status)
	}
	r.ListenerID = listenerID
	r.Status = StatusActive
	return nil
}

// End closes the room. Ending a Pending room is legal (the requestor
// cancels before anyone accepted); ending twice is not.
func (r *Room) End(now time.Time) error {
	if r.Status == StatusEnded {
		return errors.InvalidTransition("room %s already ended", r.ID)
	}
	r.Status = StatusEnded
	r.EndedAt = &now
	return nil
}

// Participants returns the identities attached to the room.
// A Pending room only has its requestor.
func (r *Room) Participants() []string {
	if r.ListenerID == "" {
		return []string{r.RequestorID}
	}
	return []string{r.RequestorID, r.ListenerID}
}

// Counterpart returns the other participant, or "" when there is none.
func (r *Room) Counterpart(userID string) string {
	switch userID {
	case r.RequestorID:
		return r.ListenerID
	case r.ListenerID:
		return r.RequestorID
	default:
		return ""
	}
}

// HasParticipant reports whether userID is one of the two parties.
func (r *Room) HasParticipant(userID string) bool {
	return userID == r.RequestorID || (r.ListenerID != "" && userID == r.ListenerID)
}
