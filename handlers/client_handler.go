package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"catamaze/server/messages"
	"catamaze/server/network"
	"catamaze/server/services"
)

// GameAPI is the part of the game service a client connection drives.
type GameAPI interface {
	NewGame() (*messages.GameStateMessage, error)
	QueueAction(gameID, token string) (*messages.GameStateMessage, error)
	ClearQueue(gameID string) (*messages.GameStateMessage, error)
	Tick(gameID string) (*messages.TickResultMessage, error)
	Observe(gameID string) (*messages.ObservationMessage, error)
	Resume(gameID string) (*messages.GameStateMessage, error)
	Watch(gameID string) (*messages.WatchUpdateMessage, error)
	Logs(req messages.LogsRequest) (*messages.LogEntriesMessage, error)
}

var _ GameAPI = (*services.GameService)(nil)

const codeUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		return true
	},
}

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn          *network.Connection
	service       GameAPI
	clientManager *ClientManager
}

// NewHTTPHandler upgrades requests to WebSocket connections served by
// HandleClientConnection.
func NewHTTPHandler(service GameAPI, clientManager *ClientManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}
		HandleClientConnection(conn, service, clientManager)
	}
}

// HandleClientConnection serves one client until its connection closes
func HandleClientConnection(wsConn *websocket.Conn, service GameAPI, clientManager *ClientManager) {
	conn := network.NewConnection(wsConn)
	handler := &ClientHandler{
		conn:          conn,
		service:       service,
		clientManager: clientManager,
	}
	log.Printf("New connection from %s", conn.RemoteAddr())
	defer func() {
		clientManager.RemoveClient(handler)
		log.Printf("Client %s disconnected", conn.RemoteAddr())
	}()

	go conn.WritePump()
	conn.ReadPump(handler)
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var msg messages.IncomingMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.sendError(services.CodeBadRequest, fmt.Sprintf("malformed message: %v", err))
		return
	}

	switch msg.Type {
	case messages.MessageTypeNewGame:
		h.handleNewGame()
	case messages.MessageTypeAction:
		h.handleAction(msg.Payload)
	case messages.MessageTypeTick:
		h.handleTick(msg.Payload)
	case messages.MessageTypeClearQueue:
		h.handleGameRequest(msg.Payload, messages.MessageTypeQueueCleared, func(id string) (interface{}, error) {
			return h.service.ClearQueue(id)
		})
	case messages.MessageTypeResume:
		h.handleGameRequest(msg.Payload, messages.MessageTypeResumed, func(id string) (interface{}, error) {
			return h.service.Resume(id)
		})
	case messages.MessageTypeObserve:
		h.handleGameRequest(msg.Payload, messages.MessageTypeObservation, func(id string) (interface{}, error) {
			return h.service.Observe(id)
		})
	case messages.MessageTypeWatch:
		h.handleWatch(msg.Payload)
	case messages.MessageTypeUnwatch:
		h.handleUnwatch(msg.Payload)
	case messages.MessageTypeLogs:
		h.handleLogs(msg.Payload)
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		h.sendError(codeUnknownMessageType, "Unknown message type received")
	}
}

func (h *ClientHandler) handleNewGame() {
	resp, err := h.service.NewGame()
	if err != nil {
		h.sendServiceError(err)
		return
	}
	h.send(messages.MessageTypeGameCreated, resp)
}

func (h *ClientHandler) handleAction(payload json.RawMessage) {
	var req messages.ActionRequest
	if !h.decode(payload, &req) {
		return
	}
	resp, err := h.service.QueueAction(req.GameID, req.Action)
	if err != nil {
		h.sendServiceError(err)
		return
	}
	h.send(messages.MessageTypeActionQueued, resp)
}

func (h *ClientHandler) handleTick(payload json.RawMessage) {
	var req messages.GameRequest
	if !h.decodeGame(payload, &req) {
		return
	}
	resp, err := h.service.Tick(req.GameID)
	if err != nil {
		h.sendServiceError(err)
		return
	}
	h.send(messages.MessageTypeTickResult, resp)
	h.broadcastWatchUpdate(req.GameID, resp.Events)
}

// handleGameRequest serves the requests that only carry a game id.
func (h *ClientHandler) handleGameRequest(payload json.RawMessage, respType messages.MessageType, fn func(gameID string) (interface{}, error)) {
	var req messages.GameRequest
	if !h.decodeGame(payload, &req) {
		return
	}
	resp, err := fn(req.GameID)
	if err != nil {
		h.sendServiceError(err)
		return
	}
	h.send(respType, resp)
}

func (h *ClientHandler) handleWatch(payload json.RawMessage) {
	var req messages.GameRequest
	if !h.decodeGame(payload, &req) {
		return
	}
	resp, err := h.service.Watch(req.GameID)
	if err != nil {
		h.sendServiceError(err)
		return
	}
	h.clientManager.Watch(req.GameID, h)
	h.send(messages.MessageTypeWatchUpdate, resp)
}

func (h *ClientHandler) handleUnwatch(payload json.RawMessage) {
	var req messages.GameRequest
	if !h.decodeGame(payload, &req) {
		return
	}
	h.clientManager.Unwatch(req.GameID, h)
}

func (h *ClientHandler) handleLogs(payload json.RawMessage) {
	var req messages.LogsRequest
	if !h.decode(payload, &req) {
		return
	}
	if req.GameID == "" {
		h.sendError(services.CodeBadRequest, "game_id is required")
		return
	}
	resp, err := h.service.Logs(req)
	if err != nil {
		h.sendServiceError(err)
		return
	}
	h.send(messages.MessageTypeLogEntries, resp)
}

// broadcastWatchUpdate pushes the state of gameID after a tick to its
// watchers.
func (h *ClientHandler) broadcastWatchUpdate(gameID string, events []string) {
	if h.clientManager.Watchers(gameID) == 0 {
		return
	}
	update, err := h.service.Watch(gameID)
	if err != nil {
		log.Printf("Error building watch update for game %s: %v", gameID, err)
		return
	}
	update.Events = events
	h.clientManager.BroadcastToWatchers(gameID, messages.BaseMessage{
		Type:    messages.MessageTypeWatchUpdate,
		Payload: update,
	})
}

func (h *ClientHandler) decode(payload json.RawMessage, v interface{}) bool {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		h.sendError(services.CodeBadRequest, fmt.Sprintf("malformed payload: %v", err))
		return false
	}
	return true
}

func (h *ClientHandler) decodeGame(payload json.RawMessage, req *messages.GameRequest) bool {
	if !h.decode(payload, req) {
		return false
	}
	if req.GameID == "" {
		h.sendError(services.CodeBadRequest, "game_id is required")
		return false
	}
	return true
}

func (h *ClientHandler) send(msgType messages.MessageType, payload interface{}) {
	if err := h.conn.SendMessage(messages.BaseMessage{Type: msgType, Payload: payload}); err != nil {
		log.Printf("Error sending %s to %s: %v", msgType, h.conn.RemoteAddr(), err)
	}
}

func (h *ClientHandler) sendServiceError(err error) {
	log.Printf("Request from %s failed: %v", h.conn.RemoteAddr(), err)
	h.sendError(services.ErrorCode(err), err.Error())
}

func (h *ClientHandler) sendError(code, message string) {
	h.send(messages.MessageTypeError, messages.ErrorMessage{Code: code, Message: message})
}
