package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/rubentanahara/chat-net-8/contract"
	"github.com/rubentanahara/chat-net-8/domain/event"
)

// typingRegistry is the slice of the presence registry the sweeper uses.
type typingRegistry interface {
	ExpireTyping(now time.Time) []contract.TypingEntry
}

// counterpartResolver looks up who should be told that typing stopped.
type counterpartResolver interface {
	Counterpart(entry contract.TypingEntry) (string, bool)
}

// TypingSweeper harvests expired typing markers on a fixed tick and
// notifies each counterpart that the other side went quiet. A fresh
// typing signal simply refreshes the deadline, so an actively typing
// user is never swept.
type TypingSweeper struct {
	Log      *slog.Logger
	registry typingRegistry
	resolver counterpartResolver
	emit     func(event.DomainEvent)
	interval time.Duration
}

func NewTypingSweeper(log *slog.Logger, registry typingRegistry, resolver counterpartResolver,
	emit func(event.DomainEvent), interval time.Duration) *TypingSweeper {
	return &TypingSweeper{Log: log, registry: registry, resolver: resolver, emit: emit, interval: interval}
}

func (w *TypingSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping typing sweeper")
			return nil
		case now := <-ticker.C:
			for _, entry := range w.registry.ExpireTyping(now.UTC()) {
				other, ok := w.resolver.Counterpart(entry)
				if !ok {
					continue
				}
				w.emit(event.UserTypingStatus{
					RoomID:   entry.RoomID,
					UserID:   entry.Identity,
					IsTyping: false,
					To:       []string{other},
				})
			}
		}
	}
}
