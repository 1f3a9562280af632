package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catamaze/server/messages"
	"catamaze/server/models"
	"catamaze/server/persistence"
	"catamaze/server/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rows := make([]string, 12)
	for y := range rows {
		rows[y] = strings.Repeat(".", 12)
	}
	rows[0] = "S" + rows[0][1:]
	rows[11] = rows[11][:11] + "E"
	grid, err := models.NewGrid(rows)
	require.NoError(t, err)

	store, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "games.json"))
	require.NoError(t, err)
	service, err := services.NewGameService(services.Options{
		Grid:       grid,
		Store:      store,
		PersonaDir: "../personas",
		Seed:       3,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewHTTPHandler(service, NewClientManager()))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func request(t *testing.T, ws *websocket.Conn, msgType messages.MessageType, payload interface{}) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(messages.BaseMessage{Type: msgType, Payload: payload}))
}

func receive(t *testing.T, ws *websocket.Conn, payload interface{}) messages.MessageType {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg messages.IncomingMessage
	require.NoError(t, ws.ReadJSON(&msg))
	if payload != nil {
		require.NoError(t, json.Unmarshal(msg.Payload, payload))
	}
	return msg.Type
}

func TestClientHandler_GameFlow(t *testing.T) {
	ws := dial(t, newTestServer(t))

	request(t, ws, messages.MessageTypeNewGame, nil)
	var created messages.GameStateMessage
	require.Equal(t, messages.MessageTypeGameCreated, receive(t, ws, &created))
	require.NotEmpty(t, created.GameID)

	request(t, ws, messages.MessageTypeAction, messages.ActionRequest{GameID: created.GameID, Action: "WAIT"})
	var queued messages.GameStateMessage
	require.Equal(t, messages.MessageTypeActionQueued, receive(t, ws, &queued))
	assert.Equal(t, 1, queued.QueueSize)

	request(t, ws, messages.MessageTypeTick, messages.GameRequest{GameID: created.GameID})
	var tick messages.TickResultMessage
	require.Equal(t, messages.MessageTypeTickResult, receive(t, ws, &tick))
	assert.Equal(t, 1, tick.Tick)
	assert.Equal(t, 0, tick.QueueSize)

	request(t, ws, messages.MessageTypeObserve, messages.GameRequest{GameID: created.GameID})
	var obs messages.ObservationMessage
	require.Equal(t, messages.MessageTypeObservation, receive(t, ws, &obs))
	assert.Equal(t, 1, obs.Observation.Tick)

	request(t, ws, messages.MessageTypeLogs, messages.LogsRequest{GameID: created.GameID})
	var logs messages.LogEntriesMessage
	require.Equal(t, messages.MessageTypeLogEntries, receive(t, ws, &logs))
	assert.Equal(t, len(logs.Entries), logs.Total)
}

func TestClientHandler_Errors(t *testing.T) {
	ws := dial(t, newTestServer(t))

	tests := []struct {
		name    string
		msgType messages.MessageType
		payload interface{}
		code    string
	}{
		{"unknown type", "fly", nil, codeUnknownMessageType},
		{"missing game id", messages.MessageTypeTick, messages.GameRequest{}, services.CodeBadRequest},
		{"unknown game", messages.MessageTypeResume, messages.GameRequest{GameID: "nope"}, services.CodeGameNotFound},
		{"bad payload", messages.MessageTypeAction, "not an object", services.CodeBadRequest},
		{"negative offset", messages.MessageTypeLogs, messages.LogsRequest{GameID: "any", Offset: -1}, services.CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request(t, ws, tt.msgType, tt.payload)
			var errMsg messages.ErrorMessage
			require.Equal(t, messages.MessageTypeError, receive(t, ws, &errMsg))
			assert.Equal(t, tt.code, errMsg.Code)
		})
	}
}

func TestClientHandler_InvalidAction(t *testing.T) {
	ws := dial(t, newTestServer(t))

	request(t, ws, messages.MessageTypeNewGame, nil)
	var created messages.GameStateMessage
	require.Equal(t, messages.MessageTypeGameCreated, receive(t, ws, &created))

	request(t, ws, messages.MessageTypeAction, messages.ActionRequest{GameID: created.GameID, Action: "JUMP"})
	var errMsg messages.ErrorMessage
	require.Equal(t, messages.MessageTypeError, receive(t, ws, &errMsg))
	assert.Equal(t, services.CodeInvalidAction, errMsg.Code)
}

func TestClientHandler_WatchersReceiveTicks(t *testing.T) {
	srv := newTestServer(t)
	player := dial(t, srv)
	watcher := dial(t, srv)

	request(t, player, messages.MessageTypeNewGame, nil)
	var created messages.GameStateMessage
	require.Equal(t, messages.MessageTypeGameCreated, receive(t, player, &created))

	request(t, watcher, messages.MessageTypeWatch, messages.GameRequest{GameID: created.GameID})
	var initial messages.WatchUpdateMessage
	require.Equal(t, messages.MessageTypeWatchUpdate, receive(t, watcher, &initial))
	assert.Len(t, initial.Map, 12)
	assert.Len(t, initial.Entities, 4)

	request(t, player, messages.MessageTypeTick, messages.GameRequest{GameID: created.GameID})
	require.Equal(t, messages.MessageTypeTickResult, receive(t, player, nil))

	var update messages.WatchUpdateMessage
	require.Equal(t, messages.MessageTypeWatchUpdate, receive(t, watcher, &update))
	assert.Equal(t, 1, update.Tick)
	assert.Equal(t, created.GameID, update.GameID)
}

func TestClientManager_Watchers(t *testing.T) {
	cm := NewClientManager()
	a, b := &ClientHandler{}, &ClientHandler{}

	cm.Watch("g1", a)
	cm.Watch("g1", b)
	cm.Watch("g2", a)
	assert.Equal(t, 2, cm.Watchers("g1"))

	cm.Unwatch("g1", b)
	assert.Equal(t, 1, cm.Watchers("g1"))

	cm.RemoveClient(a)
	assert.Equal(t, 0, cm.Watchers("g1"))
	assert.Equal(t, 0, cm.Watchers("g2"))
}
