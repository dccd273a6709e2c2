package workers

import (
	"context"
	"log/slog"

	"github.com/rubentanahara/chat-net-8/contract"
	"github.com/rubentanahara/chat-net-8/domain/event"
)

// presence is the subset of the registry the fanout needs.
type presence interface {
	GroupFor(identity string) []contract.EventSink
	Identities() []string
}

// EventFanout delivers domain events to the live connections of their
// recipients.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries: an offline identity is skipped, a saturated
// sink drops the push. EventFanout is not a message broker.
//
// Recipient groups are resolved from the registry at push time, never
// earlier, so a reconnect between emission and delivery still reaches
// the fresh connection.
type EventFanout struct {
	Log         *slog.Logger
	DomainEvent chan event.DomainEvent
	registry    presence
}

func NewEventFanout(log *slog.Logger, domainEvent chan event.DomainEvent, registry presence) *EventFanout {
	return &EventFanout{Log: log, DomainEvent: domainEvent, registry: registry}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping event fanout")
			return nil
		case evt := <-w.DomainEvent:
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout pushes one event to every sink of every recipient.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	recipients := evt.Recipients()
	if recipients == nil {
		recipients = w.registry.Identities()
	}
	for _, identity := range recipients {
		for _, sink := range w.registry.GroupFor(identity) {
			if err := sink.Consume(ctx, evt); err != nil {
				w.Log.Debug("Push dropped", "event", evt.Name(), "identity", identity, "error", err)
			}
		}
	}
}
