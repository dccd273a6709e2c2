// Package ws is the session gateway: it accepts WebSocket connections,
// binds each one to its claimed identity, translates the JSON envelope
// protocol into service calls, and pushes server events back out.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apperrors "github.com/rubentanahara/chat-net-8/errors"
	"github.com/rubentanahara/chat-net-8/services"
)

const defaultEndReason = "chat ended"

type Gateway struct {
	log                  *slog.Logger
	service              services.IChatService
	validate             *validator.Validate
	upgrader             websocket.Upgrader
	connectionBufferSize int
	deliveryTimeout      time.Duration
}

func NewGateway(log *slog.Logger, service services.IChatService,
	connectionBufferSize int, deliveryTimeout time.Duration) *Gateway {
	return &Gateway{
		log:                  log,
		service:              service,
		validate:             validator.New(),
		upgrader:             websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		connectionBufferSize: connectionBufferSize,
		deliveryTimeout:      deliveryTimeout,
	}
}

// Handler mounts the gateway endpoint.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWS)
	return mux
}

// handleWS upgrades the socket, binds the claimed identity, and runs the
// read loop until the client goes away. Identity is connection metadata:
// a "user" query parameter, opaque and self-asserted.
func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("user")
	if err := g.validate.Var(identity, "required,min=1,max=64"); err != nil {
		http.Error(w, "missing or invalid user identity", http.StatusBadRequest)
		return
	}

	socket, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("WebSocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(g.log, identity, socket, g.connectionBufferSize, g.deliveryTimeout)
	g.service.Connect(identity, conn)
	defer func() {
		conn.Close()
		g.service.Disconnect(identity, conn)
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go conn.WritePump(ctx)

	g.log.Info("Client connected", "identity", identity)
	g.readLoop(ctx, conn)
	g.log.Info("Client disconnected", "identity", identity)
}

func (g *Gateway) readLoop(ctx context.Context, conn *Connection) {
	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			_ = conn.reply(Response{Error: &WireError{
				Kind:   string(apperrors.KindValidation),
				Detail: "malformed request envelope",
			}})
			continue
		}

		resp := g.dispatch(ctx, conn.identity, req)
		if err := conn.reply(resp); err != nil {
			g.log.Warn("Failed to deliver response, closing connection",
				"identity", conn.identity, "error", err)
			conn.Close()
			return
		}
	}
}

// dispatch routes one envelope to its operation. A mutating-operation
// failure always travels back to the caller with its kind and detail;
// only the fire-and-forget signals (typing, seen) degrade silently.
func (g *Gateway) dispatch(ctx context.Context, identity string, req Request) Response {
	result, err := g.invoke(ctx, identity, req)
	if err != nil {
		return Response{ID: req.ID, Error: &WireError{
			Kind:   string(apperrors.KindOf(err)),
			Detail: apperrors.DetailOf(err),
		}}
	}
	return Response{ID: req.ID, Result: result}
}

func (g *Gateway) invoke(ctx context.Context, identity string, req Request) (any, error) {
	switch req.Method {
	case "CreateChatRequest":
		var p createChatRequestParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		room, err := g.service.CreateChatRequest(ctx, orIdentity(p.RequestorID, identity), p.InitialMessage)
		if err != nil {
			return nil, err
		}
		return toRoomView(room), nil

	case "AcceptChatRequest":
		var p acceptChatRequestParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		roomID, err := parseRoomID(p.RoomID)
		if err != nil {
			return nil, err
		}
		room, err := g.service.AcceptChatRequest(ctx, roomID, orIdentity(p.ListenerID, identity))
		if err != nil {
			return nil, err
		}
		return toRoomView(room), nil

	case "SendMessage":
		var p sendMessageParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		roomID, err := parseRoomID(p.RoomID)
		if err != nil {
			return nil, err
		}
		message, err := g.service.SendMessage(ctx, roomID, orIdentity(p.SenderID, identity), p.Content)
		if err != nil {
			return nil, err
		}
		return toMessageView(message), nil

	case "EndChat":
		var p endChatParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		roomID, err := parseRoomID(p.RoomID)
		if err != nil {
			return nil, err
		}
		reason := p.Reason
		if reason == "" {
			reason = defaultEndReason
		}
		if err := g.service.EndChat(ctx, roomID, reason); err != nil {
			return nil, err
		}
		return true, nil

	case "GetPendingRequests":
		rooms, err := g.service.GetPendingRequests()
		if err != nil {
			return nil, err
		}
		return toRoomViews(rooms), nil

	case "GetActiveChats":
		var p activeChatsParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		rooms, err := g.service.GetActiveChats(orIdentity(p.UserID, identity))
		if err != nil {
			return nil, err
		}
		return toRoomViews(rooms), nil

	case "GetChatHistory":
		var p roomIDParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		roomID, err := parseRoomID(p.RoomID)
		if err != nil {
			return nil, err
		}
		messages, err := g.service.GetChatHistory(roomID)
		if err != nil {
			return nil, err
		}
		return toMessageViews(messages), nil

	case "GetChatRoomById":
		var p roomIDParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		roomID, err := parseRoomID(p.RoomID)
		if err != nil {
			return nil, err
		}
		room, err := g.service.GetChatRoomByID(roomID)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return toRoomView(room), nil

	case "UpdateTypingStatus":
		var p typingStatusParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		roomID, err := parseRoomID(p.RoomID)
		if err != nil {
			return nil, err
		}
		// Best effort: a failed typing relay never bounces back to the caller.
		if err := g.service.UpdateTypingStatus(ctx, roomID, orIdentity(p.UserID, identity), p.IsTyping); err != nil {
			g.log.Debug("Typing update ignored", "room_id", p.RoomID, "error", err)
		}
		return true, nil

	case "MarkMessageAsSeen":
		var p markSeenParams
		if err := g.params(req, &p); err != nil {
			return nil, err
		}
		roomID, err := parseRoomID(p.RoomID)
		if err != nil {
			return nil, err
		}
		// Best effort, same as typing.
		if err := g.service.MarkMessagesAsSeen(ctx, roomID, orIdentity(p.UserID, identity)); err != nil {
			g.log.Debug("Seen update ignored", "room_id", p.RoomID, "error", err)
		}
		return true, nil

	default:
		return nil, apperrors.Validation("unknown method %q", req.Method)
	}
}

// params decodes and validates a request's params payload.
func (g *Gateway) params(req Request, out any) error {
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, out); err != nil {
			return apperrors.Validation("malformed params for %s", req.Method)
		}
	}
	if err := g.validate.Struct(out); err != nil {
		return apperrors.Validation("invalid params for %s: %s", req.Method, err)
	}
	return nil
}

func parseRoomID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid room id %q", raw)
	}
	return id, nil
}

// orIdentity falls back to the connection's bound identity when the
// caller did not spell the id out in params.
func orIdentity(fromParams, bound string) string {
	if fromParams != "" {
		return fromParams
	}
	return bound
}
