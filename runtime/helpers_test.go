package runtime

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/rubentanahara/chat-net-8/domain/event"
	"github.com/rubentanahara/chat-net-8/moderation"
	"github.com/rubentanahara/chat-net-8/repositories"
)

func testOptions() Options {
	return Options{
		BufferSize:       64,
		LockTimeout:      2 * time.Second,
		TypingTTL:        1 * time.Second,
		SweepInterval:    50 * time.Millisecond,
		MetricInterval:   time.Minute,
		RestartInterval:  50 * time.Millisecond,
		MaxContentLength: 1000,
		RoomMessageCap:   50,
		MaxActiveRooms:   50,
		ListLimit:        50,
	}
}

// newTestOrchestrator wires the full core over a throwaway Badger store.
// The worker pipeline is not started; tests read emitted events directly.
func newTestOrchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	moderator, err := moderation.NewEmbeddedModerator('*')
	require.NoError(t, err)

	log := slog.Default()
	return NewOrchestrator(log, repositories.NewRoomRepository(db, log),
		repositories.NewMessageRepository(db, log), moderator, opts)
}

// drainEvents empties the emitter buffer without blocking.
func drainEvents(o *Orchestrator) []event.DomainEvent {
	var out []event.DomainEvent
	for {
		select {
		case e := <-o.emitter.events:
			out = append(out, e)
		default:
			return out
		}
	}
}
