package ws

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rubentanahara/chat-net-8/contract"
	"github.com/rubentanahara/chat-net-8/domain"
	apperrors "github.com/rubentanahara/chat-net-8/errors"
	"github.com/rubentanahara/chat-net-8/mocks"
)

func newTestGateway(t *testing.T) (*Gateway, *mocks.MockIChatService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	service := mocks.NewMockIChatService(ctrl)
	return NewGateway(slog.Default(), service, 16, time.Second), service
}

func call(method, params string) Request {
	req := Request{ID: "1", Method: method}
	if params != "" {
		req.Params = []byte(params)
	}
	return req
}

func Test_Dispatch_FallsBackToBoundIdentity(t *testing.T) {
	req := require.New(t)
	g, service := newTestGateway(t)

	room := *domain.NewRoom("alice", time.Now().UTC())
	service.EXPECT().CreateChatRequest(gomock.Any(), "alice", "hi").Return(room, nil)

	resp := g.dispatch(context.Background(), "alice", call("CreateChatRequest", `{"initial_message":"hi"}`))

	req.Nil(resp.Error)
	view, ok := resp.Result.(RoomView)
	req.True(ok)
	req.Equal(room.ID.String(), view.ID)
	req.Equal("alice", view.RequestorID)
	req.Equal(string(domain.StatusPending), view.Status)
}

func Test_Dispatch_ExplicitSenderWinsOverBoundIdentity(t *testing.T) {
	req := require.New(t)
	g, service := newTestGateway(t)

	roomID := uuid.New()
	message := domain.Message{ID: uuid.New(), RoomID: roomID, SenderID: "carol", Content: "hello"}
	service.EXPECT().SendMessage(gomock.Any(), roomID, "carol", "hello").Return(message, nil)

	resp := g.dispatch(context.Background(), "alice",
		call("SendMessage", `{"room_id":"`+roomID.String()+`","sender_id":"carol","content":"hello"}`))

	req.Nil(resp.Error)
	view, ok := resp.Result.(MessageView)
	req.True(ok)
	req.Equal("carol", view.SenderID)
}

func Test_Dispatch_RejectsUnknownMethod(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGateway(t)

	resp := g.dispatch(context.Background(), "alice", call("TeleportUser", ""))

	req.NotNil(resp.Error)
	req.Equal(string(apperrors.KindValidation), resp.Error.Kind)
}

func Test_Dispatch_RejectsInvalidRoomID(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGateway(t)

	resp := g.dispatch(context.Background(), "alice",
		call("GetChatHistory", `{"room_id":"not-a-uuid"}`))

	req.NotNil(resp.Error)
	req.Equal(string(apperrors.KindValidation), resp.Error.Kind)
}

func Test_Dispatch_RejectsMalformedParams(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGateway(t)

	resp := g.dispatch(context.Background(), "alice", call("SendMessage", `{"room_id":42}`))

	req.NotNil(resp.Error)
	req.Equal(string(apperrors.KindValidation), resp.Error.Kind)
}

func Test_Dispatch_ServiceErrorTravelsWithItsKind(t *testing.T) {
	req := require.New(t)
	g, service := newTestGateway(t)

	roomID := uuid.New()
	service.EXPECT().
		EndChat(gomock.Any(), roomID, "chat ended").
		Return(apperrors.InvalidState("room %s already ended", roomID))

	resp := g.dispatch(context.Background(), "alice",
		call("EndChat", `{"room_id":"`+roomID.String()+`"}`))

	req.NotNil(resp.Error)
	req.Equal(string(apperrors.KindInvalidState), resp.Error.Kind)
	req.Contains(resp.Error.Detail, roomID.String())
}

func Test_Dispatch_AbsentRoomLookupYieldsEmptyResult(t *testing.T) {
	req := require.New(t)
	g, service := newTestGateway(t)

	roomID := uuid.New()
	service.EXPECT().
		GetChatRoomByID(roomID).
		Return(domain.Room{}, apperrors.NotFound("room %s not found", roomID))

	resp := g.dispatch(context.Background(), "alice",
		call("GetChatRoomById", `{"room_id":"`+roomID.String()+`"}`))

	// Absence is an answer here, not a failure
	req.Nil(resp.Error)
	req.Nil(resp.Result)
}

func Test_Dispatch_TypingFailureIsSwallowed(t *testing.T) {
	req := require.New(t)
	g, service := newTestGateway(t)

	roomID := uuid.New()
	service.EXPECT().
		UpdateTypingStatus(gomock.Any(), roomID, "alice", true).
		Return(apperrors.Validation("not a participant"))

	resp := g.dispatch(context.Background(), "alice",
		call("UpdateTypingStatus", `{"room_id":"`+roomID.String()+`","is_typing":true}`))

	req.Nil(resp.Error)
	req.Equal(true, resp.Result)
}

func Test_Dispatch_MarkSeenFailureIsSwallowed(t *testing.T) {
	req := require.New(t)
	g, service := newTestGateway(t)

	roomID := uuid.New()
	service.EXPECT().
		MarkMessagesAsSeen(gomock.Any(), roomID, "alice").
		Return(apperrors.NotFound("room gone"))

	resp := g.dispatch(context.Background(), "alice",
		call("MarkMessageAsSeen", `{"room_id":"`+roomID.String()+`"}`))

	req.Nil(resp.Error)
	req.Equal(true, resp.Result)
}

func Test_Gateway_RejectsMissingIdentity(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGateway(t)
	server := httptest.NewServer(g.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_Gateway_WebSocketCallRoundtrip(t *testing.T) {
	req := require.New(t)
	g, service := newTestGateway(t)

	disconnected := make(chan struct{})
	service.EXPECT().Connect("alice", gomock.Any())
	service.EXPECT().Disconnect("alice", gomock.Any()).
		Do(func(string, contract.EventSink) { close(disconnected) })
	service.EXPECT().GetPendingRequests().Return(nil, nil)

	server := httptest.NewServer(g.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?user=alice"
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	defer client.Close()

	req.NoError(client.WriteJSON(Request{ID: "42", Method: "GetPendingRequests"}))

	var resp Response
	req.NoError(client.SetReadDeadline(time.Now().Add(2 * time.Second)))
	req.NoError(client.ReadJSON(&resp))
	req.Equal("42", resp.ID)
	req.Nil(resp.Error)

	// The handler tears down asynchronously after the hijacked socket
	// closes; wait for Disconnect before the mock controller finishes.
	req.NoError(client.Close())
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Disconnect")
	}
}
