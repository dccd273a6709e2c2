package runtime

import (
	"fmt"
	"log/slog"

	"github.com/rubentanahara/chat-net-8/domain/event"
)

// Emitter feeds domain events into the fanout pipeline.
// Emission never blocks a mutating operation: if the pipeline is saturated
// the event is dropped and logged, matching the best-effort push contract.
type Emitter struct {
	log    *slog.Logger
	events chan event.DomainEvent
}

func NewEmitter(log *slog.Logger, bufferSize int) *Emitter {
	return &Emitter{log: log, events: make(chan event.DomainEvent, bufferSize)}
}

func (e *Emitter) Emit(evt event.DomainEvent) {
	select {
	case e.events <- evt:
	default:
		e.log.Warn(fmt.Sprintf("Event channel full, dropping %s", evt.Name()))
	}
}

// Events exposes the consuming side for the fanout worker.
func (e *Emitter) Events() chan event.DomainEvent { return e.events }
