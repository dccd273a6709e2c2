package ws

import (
	"context"
	"fmt"
)

// ErrBackpressure is returned when a connection's outbound buffer is full;
// the push is dropped rather than blocking the fanout.
var ErrBackpressure = fmt.Errorf("backpressure: outbound buffer full")

// ErrConnClosed is returned for pushes aimed at a connection already torn down.
var ErrConnClosed = fmt.Errorf("connection closed")

// trySend queues a frame without blocking.
// Called by the fanout through Consume; the write pump takes it from here.
func (c *Connection) trySend(ctx context.Context, frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.outbound <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBackpressure
	}
}
