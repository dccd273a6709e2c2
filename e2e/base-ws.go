package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/rubentanahara/chat-net-8/infrastructure/ws"
	"github.com/rubentanahara/chat-net-8/moderation"
	"github.com/rubentanahara/chat-net-8/repositories"
	"github.com/rubentanahara/chat-net-8/runtime"
	"github.com/rubentanahara/chat-net-8/services"
)

// BaseWSSuite boots the full broker in-process: Badger in a throwaway
// directory, the orchestrator with its workers running, and the gateway
// behind an httptest server. Scenarios talk to it over real WebSockets.
type BaseWSSuite struct {
	suite.Suite
	Config Config

	db     *badger.DB
	server *httptest.Server
	cancel context.CancelFunc
}

// SetupSuite loads the environment configuration and starts the broker
func (s *BaseWSSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	log := slog.Default()
	s.db, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	moderator, err := moderation.NewEmbeddedModerator('*')
	s.Require().NoError(err)

	orchestrator := runtime.NewOrchestrator(log,
		repositories.NewRoomRepository(s.db, log),
		repositories.NewMessageRepository(s.db, log),
		moderator,
		runtime.Options{
			BufferSize:       64,
			LockTimeout:      5 * time.Second,
			TypingTTL:        time.Second,
			SweepInterval:    100 * time.Millisecond,
			MetricInterval:   time.Minute,
			RestartInterval:  100 * time.Millisecond,
			MaxContentLength: 1000,
			RoomMessageCap:   50,
			MaxActiveRooms:   50,
			ListLimit:        50,
		})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = orchestrator.Start(ctx) }()

	gateway := ws.NewGateway(log, services.NewChatService(orchestrator), 32, 2*time.Second)
	s.server = httptest.NewServer(gateway.Handler())
}

func (s *BaseWSSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.db != nil {
		s.Require().NoError(s.db.Close())
	}
}

// Dial connects a client under the given identity, with a colorized
// header in the logs marking the step.
func (s *BaseWSSuite) Dial(name, identity string) *wsClient {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws?user=" + identity
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err, "Failed to connect to broker at "+url)

	client := &wsClient{
		suite:     s,
		identity:  identity,
		conn:      conn,
		responses: make(chan ws.Response, 16),
		pushes:    make(chan inboundPush, 64),
	}
	go client.readLoop()
	return client
}

// inboundPush is a server event with its payload still raw.
type inboundPush struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// wsClient is one connected identity. A single read loop splits the
// stream into call responses and server pushes.
type wsClient struct {
	suite     *BaseWSSuite
	identity  string
	conn      *websocket.Conn
	calls     int
	responses chan ws.Response
	pushes    chan inboundPush
}

func (c *wsClient) Close() {
	_ = c.conn.Close()
}

func (c *wsClient) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			close(c.responses)
			return
		}
		if c.suite.Config.DebugJSON {
			c.suite.T().Logf("WS [%s] <- %s", c.identity, data)
		}

		var probe struct {
			Event string `json:"event"`
		}
		if json.Unmarshal(data, &probe) == nil && probe.Event != "" {
			var push inboundPush
			if json.Unmarshal(data, &push) == nil {
				c.pushes <- push
			}
			continue
		}
		var resp ws.Response
		if json.Unmarshal(data, &resp) == nil {
			c.responses <- resp
		}
	}
}

// Call invokes one method and waits for its response.
func (c *wsClient) Call(method string, params any) ws.Response {
	c.calls++
	req := ws.Request{ID: fmt.Sprintf("%s-%d", c.identity, c.calls), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		c.suite.Require().NoError(err)
		req.Params = raw
	}
	if c.suite.Config.DebugJSON {
		frame, _ := json.Marshal(req)
		c.suite.T().Logf("WS [%s] -> %s", c.identity, frame)
	}

	start := time.Now()
	c.suite.Require().NoError(c.conn.WriteJSON(req))
	select {
	case resp, ok := <-c.responses:
		c.suite.Require().True(ok, "Connection closed while waiting for %s response", method)
		c.suite.Require().Equal(req.ID, resp.ID, "Out-of-order response for %s", method)
		c.suite.T().Logf("WS %s [%s] in %v", method, c.identity, time.Since(start))
		return resp
	case <-time.After(c.suite.Config.CallTimeout):
		c.suite.Require().FailNowf("Call timed out", "%s did not answer within %v", method, c.suite.Config.CallTimeout)
		return ws.Response{}
	}
}

// MustCall invokes one method and decodes its successful result into out.
func (c *wsClient) MustCall(method string, params, out any) {
	resp := c.Call(method, params)
	c.suite.Require().Nil(resp.Error, "%s failed: %+v", method, resp.Error)
	if out != nil {
		raw, err := json.Marshal(resp.Result)
		c.suite.Require().NoError(err)
		c.suite.Require().NoError(json.Unmarshal(raw, out))
	}
}

// WaitPush waits for the named event, discarding unrelated pushes that
// arrive in between (broadcasts, typing expiry).
func (c *wsClient) WaitPush(name string, out any) {
	deadline := time.After(c.suite.Config.CallTimeout)
	for {
		select {
		case push := <-c.pushes:
			if push.Event != name {
				c.suite.T().Logf("WS [%s] skipping push %s while waiting for %s", c.identity, push.Event, name)
				continue
			}
			if out != nil {
				c.suite.Require().NoError(json.Unmarshal(push.Payload, out))
			}
			return
		case <-deadline:
			c.suite.Require().FailNowf("Push timed out", "no %s push for %s within %v", name, c.identity, c.suite.Config.CallTimeout)
			return
		}
	}
}
