// Command client is a reference console client for the chat broker.
// It speaks the gateway's JSON envelope protocol over a WebSocket and is
// meant for manual testing, not for end users.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:8080"`
	UserID        string `env:"CHAT_USER_ID,required=true"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`
}

type request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Kind   string `json:"kind"`
		Detail string `json:"detail"`
	} `json:"error,omitempty"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type roomView struct {
	ID          string `json:"id"`
	RequestorID string `json:"requestor_id"`
	ListenerID  string `json:"listener_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type messageView struct {
	SenderID  string `json:"sender_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
	IsTyping  bool   `json:"is_typing"`
	Reason    string `json:"reason"`
}

type client struct {
	conn    *websocket.Conn
	nextID  atomic.Int64
	mu      sync.Mutex
	methods map[string]string // request id -> method, to render replies
	room    string            // currently joined room
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	u := url.URL{Scheme: "ws", Host: config.ServerAddress, Path: "/ws",
		RawQuery: "user=" + url.QueryEscape(config.UserID)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", u.String(), err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	c := &client{conn: conn, methods: make(map[string]string)}
	color.Green.Printf(">>> Connected to %s as %s\n", config.ServerAddress, config.UserID)
	printHelp()

	go c.receiveLoop()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := c.handleLine(strings.TrimSpace(scanner.Text())); err != nil {
			return exitRuntime, err
		}
	}
	return exitOK, scanner.Err()
}

func printHelp() {
	color.Gray.Println("commands: /request <msg> | /list | /accept <room> | /join <room> | /history | /chats | /typing | /seen | /end | plain text sends to joined room")
}

func (c *client) handleLine(line string) error {
	switch {
	case line == "":
		return nil
	case strings.HasPrefix(line, "/request "):
		return c.call("CreateChatRequest", map[string]any{"initial_message": strings.TrimPrefix(line, "/request ")})
	case line == "/list":
		return c.call("GetPendingRequests", nil)
	case strings.HasPrefix(line, "/accept "):
		room := strings.TrimPrefix(line, "/accept ")
		c.setRoom(room)
		return c.call("AcceptChatRequest", map[string]any{"room_id": room})
	case strings.HasPrefix(line, "/join "):
		c.setRoom(strings.TrimPrefix(line, "/join "))
		color.Gray.Println("joined")
		return nil
	case line == "/history":
		return c.callInRoom("GetChatHistory", nil)
	case line == "/chats":
		return c.call("GetActiveChats", nil)
	case line == "/typing":
		return c.callInRoom("UpdateTypingStatus", map[string]any{"is_typing": true})
	case line == "/seen":
		return c.callInRoom("MarkMessageAsSeen", nil)
	case line == "/end":
		return c.callInRoom("EndChat", nil)
	default:
		return c.callInRoom("SendMessage", map[string]any{"content": line})
	}
}

func (c *client) setRoom(room string) {
	c.mu.Lock()
	c.room = room
	c.mu.Unlock()
}

func (c *client) callInRoom(method string, params map[string]any) error {
	c.mu.Lock()
	room := c.room
	c.mu.Unlock()
	if room == "" {
		color.Red.Println("no room joined, use /accept or /join first")
		return nil
	}
	if params == nil {
		params = map[string]any{}
	}
	params["room_id"] = room
	return c.call(method, params)
}

func (c *client) call(method string, params any) error {
	id := strconv.FormatInt(c.nextID.Add(1), 10)
	c.mu.Lock()
	c.methods[id] = method
	c.mu.Unlock()
	return c.conn.WriteJSON(request{ID: id, Method: method, Params: params})
}

func (c *client) receiveLoop() {
	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			color.Red.Println("connection lost")
			os.Exit(exitRuntime)
		}
		switch {
		case resp.Event != "":
			c.renderEvent(resp.Event, resp.Payload)
		case resp.Error != nil:
			color.Red.Printf("[%s] %s\n", resp.Error.Kind, resp.Error.Detail)
		default:
			c.renderResult(resp.ID, resp.Result)
		}
	}
}

func (c *client) renderEvent(name string, payload json.RawMessage) {
	switch name {
	case "ReceiveMessage":
		var m messageView
		_ = json.Unmarshal(payload, &m)
		color.Cyan.Printf("%s: %s\n", m.SenderID, m.Content)
	case "NewChatRequest":
		var r roomView
		_ = json.Unmarshal(payload, &r)
		color.Yellow.Printf("new chat request %s from %s\n", r.ID, r.RequestorID)
	case "ChatAccepted":
		var r roomView
		_ = json.Unmarshal(payload, &r)
		c.setRoom(r.ID)
		color.Green.Printf("chat %s accepted by %s\n", r.ID, r.ListenerID)
	case "ChatEnded":
		var m messageView
		_ = json.Unmarshal(payload, &m)
		color.Yellow.Printf("chat ended: %s\n", m.Reason)
	case "UserTypingStatus":
		var m messageView
		_ = json.Unmarshal(payload, &m)
		if m.IsTyping {
			color.Gray.Printf("%s is typing...\n", m.UserID)
		}
	case "MessagesSeen":
		var m messageView
		_ = json.Unmarshal(payload, &m)
		color.Gray.Printf("%s has seen your messages\n", m.UserID)
	}
}

func (c *client) renderResult(id string, result json.RawMessage) {
	c.mu.Lock()
	method := c.methods[id]
	delete(c.methods, id)
	c.mu.Unlock()

	switch method {
	case "GetPendingRequests", "GetActiveChats":
		var rooms []roomView
		_ = json.Unmarshal(result, &rooms)
		renderRooms(rooms)
	case "GetChatHistory":
		var messages []messageView
		_ = json.Unmarshal(result, &messages)
		for _, m := range messages {
			color.Cyan.Printf("%s: %s\n", m.SenderID, m.Content)
		}
	case "CreateChatRequest":
		var r roomView
		_ = json.Unmarshal(result, &r)
		c.setRoom(r.ID)
		color.Green.Printf("request %s created, waiting for a listener\n", r.ID)
	default:
		// Acknowledgements need no rendering.
	}
}

func renderRooms(rooms []roomView) {
	if len(rooms) == 0 {
		color.Gray.Println("nothing here")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Requestor", "Listener", "Status", "Created"})
	for _, r := range rooms {
		table.Append([]string{r.ID, r.RequestorID, r.ListenerID, r.Status, r.CreatedAt})
	}
	table.Render()
}
