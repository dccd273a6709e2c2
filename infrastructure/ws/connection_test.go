package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rubentanahara/chat-net-8/domain"
	"github.com/rubentanahara/chat-net-8/domain/event"
)

// fakeSocket records frames written by the pump.
type fakeSocket struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) { select {} }
func (s *fakeSocket) WriteMessage(mt int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, data)
	return nil
}
func (s *fakeSocket) SetWriteDeadline(t time.Time) error { return nil }
func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) written() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.frames...)
}

func Test_Consume_FramesEventAndPumpWritesIt(t *testing.T) {
	req := require.New(t)
	socket := &fakeSocket{}
	conn := NewConnection(slog.Default(), "bob", socket, 4, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		conn.WritePump(ctx)
		close(done)
	}()

	message := domain.Message{ID: uuid.New(), RoomID: uuid.New(), SenderID: "alice", Content: "hi"}
	req.NoError(conn.Consume(ctx, event.ReceiveMessage{Message: message, To: []string{"bob"}}))

	req.Eventually(func() bool { return len(socket.written()) == 1 }, time.Second, 10*time.Millisecond)

	var push struct {
		Event   string      `json:"event"`
		Payload MessageView `json:"payload"`
	}
	req.NoError(json.Unmarshal(socket.written()[0], &push))
	req.Equal("ReceiveMessage", push.Event)
	req.Equal("hi", push.Payload.Content)
	req.Equal(message.ID.String(), push.Payload.ID)

	conn.Close()
	<-done
	req.True(socket.closed)
}

func Test_Consume_DropsOnFullBuffer(t *testing.T) {
	req := require.New(t)
	// Buffer of one and no pump draining it
	conn := NewConnection(slog.Default(), "bob", &fakeSocket{}, 1, time.Second)
	ctx := context.Background()

	evt := event.MessagesSeen{RoomID: uuid.New(), UserID: "alice", To: []string{"bob"}}
	req.NoError(conn.Consume(ctx, evt))
	req.ErrorIs(conn.Consume(ctx, evt), ErrBackpressure)
}

func Test_Consume_AfterCloseReportsClosed(t *testing.T) {
	req := require.New(t)
	conn := NewConnection(slog.Default(), "bob", &fakeSocket{}, 4, time.Second)
	conn.Close()

	evt := event.MessagesSeen{RoomID: uuid.New(), UserID: "alice", To: []string{"bob"}}
	req.ErrorIs(conn.Consume(context.Background(), evt), ErrConnClosed)
}

func Test_Reply_AfterCloseFailsInsteadOfDropping(t *testing.T) {
	req := require.New(t)
	conn := NewConnection(slog.Default(), "bob", &fakeSocket{}, 4, time.Second)
	conn.Close()

	req.ErrorIs(conn.reply(Response{ID: "1", Result: true}), ErrConnClosed)
}

func Test_Close_IsIdempotent(t *testing.T) {
	conn := NewConnection(slog.Default(), "bob", &fakeSocket{}, 4, time.Second)
	conn.Close()
	conn.Close()
}
