package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rubentanahara/chat-net-8/domain/event"
)

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Connection is one live client socket bound to an identity. It implements
// contract.EventSink: the fanout hands it domain events, the write pump
// owns the socket, and pushes that cannot be buffered are dropped.
type Connection struct {
	identity string
	conn     WSConn
	log      *slog.Logger
	outbound chan []byte

	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func NewConnection(log *slog.Logger, identity string, conn WSConn, bufferSize int, writeTimeout time.Duration) *Connection {
	return &Connection{
		identity:     identity,
		conn:         conn,
		log:          log,
		outbound:     make(chan []byte, bufferSize),
		writeTimeout: writeTimeout,
	}
}

func (c *Connection) Identity() string { return c.identity }

// Consume is called by the fanout. The event is framed here and queued for
// the write pump; a full buffer means this client is too slow and the push
// is sacrificed, never the fanout's throughput.
func (c *Connection) Consume(ctx context.Context, e event.DomainEvent) error {
	frame, err := json.Marshal(toPush(e))
	if err != nil {
		return err
	}
	return c.trySend(ctx, frame)
}

// reply queues a call response. Unlike pushes a response must not be
// silently dropped, so this blocks up to the write timeout and reports
// failure to the read loop, which then tears the connection down.
func (c *Connection) reply(resp Response) error {
	frame, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.outbound <- frame:
		return nil
	case <-time.After(c.writeTimeout):
		return ErrBackpressure
	}
}

// Close is idempotent; it wakes the write pump and closes the socket.
func (c *Connection) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.outbound)
		c.mu.Unlock()
		_ = c.conn.Close()
	})
}

// WritePump drains outbound frames to the network. The pump owns all
// writes to the socket; it exits when the connection closes or a write
// fails, and closing the connection on exit unblocks the read loop too.
func (c *Connection) WritePump(ctx context.Context) {
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.outbound:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("Write failed, dropping connection", "identity", c.identity, "error", err)
				return
			}
		}
	}
}
