package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rubentanahara/chat-net-8/domain/event"
)

func TestTelemetryWorker_StopsWhenContextDies(t *testing.T) {
	req := require.New(t)
	worker := NewTelemetryWorker(slog.Default(), make(chan event.DomainEvent, 8), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req.NoError(worker.Run(ctx))
}
