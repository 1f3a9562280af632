package messages

import (
	"encoding/json"

	"catamaze/server/models"
	"catamaze/server/persistence"
)

// MessageType defines the type of message being sent
type MessageType string

// Requests
const (
	MessageTypeNewGame    MessageType = "new_game"
	MessageTypeAction     MessageType = "action"
	MessageTypeTick       MessageType = "tick"
	MessageTypeClearQueue MessageType = "clear_queue"
	MessageTypeResume     MessageType = "resume"
	MessageTypeObserve    MessageType = "observe"
	MessageTypeWatch      MessageType = "watch"
	MessageTypeUnwatch    MessageType = "unwatch"
	MessageTypeLogs       MessageType = "logs"
)

// Responses
const (
	MessageTypeGameCreated  MessageType = "game_created"
	MessageTypeActionQueued MessageType = "action_queued"
	MessageTypeTickResult   MessageType = "tick_result"
	MessageTypeQueueCleared MessageType = "queue_cleared"
	MessageTypeResumed      MessageType = "resumed"
	MessageTypeObservation  MessageType = "observation"
	MessageTypeWatchUpdate  MessageType = "watch_update"
	MessageTypeLogEntries   MessageType = "log_entries"
	MessageTypeError        MessageType = "error"
)

// BaseMessage is the base structure for all messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// IncomingMessage is a BaseMessage whose payload is decoded once the type is
// known.
type IncomingMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// GameRequest addresses an existing game.
type GameRequest struct {
	GameID string `json:"game_id"`
}

// ActionRequest queues one action for the player.
type ActionRequest struct {
	GameID string `json:"game_id"`
	Action string `json:"action"`
}

// LogsRequest reads a page of a game's log.
type LogsRequest struct {
	GameID    string `json:"game_id"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
	EntityID  string `json:"entity_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
}

// GameStateMessage answers new_game, resume, action and clear_queue.
type GameStateMessage struct {
	GameID      string              `json:"game_id"`
	Observation *models.Observation `json:"observation"`
	QueueSize   int                 `json:"queue_size"`
	Message     string              `json:"message,omitempty"`
}

// TickResultMessage is the player's view of one tick.
type TickResultMessage struct {
	GameID      string              `json:"game_id"`
	Tick        int                 `json:"tick"`
	Observation *models.Observation `json:"observation"`
	Events      []string            `json:"events"`
	QueueSize   int                 `json:"queue_size"`
	GameOver    bool                `json:"game_over"`
	WinnerID    string              `json:"winner_id,omitempty"`
}

// ObservationMessage carries the player's current observation.
type ObservationMessage struct {
	GameID      string              `json:"game_id"`
	Observation *models.Observation `json:"observation"`
}

// WatchUpdateMessage is the full, unfogged state pushed to watchers.
type WatchUpdateMessage struct {
	GameID   string                  `json:"game_id"`
	Tick     int                     `json:"tick"`
	Map      []string                `json:"map_grid"`
	Entities []models.EntitySnapshot `json:"entities"`
	Events   []string                `json:"events,omitempty"`
	GameOver bool                    `json:"game_over"`
	WinnerID string                  `json:"winner_id,omitempty"`
}

// LogEntriesMessage answers a logs request.
type LogEntriesMessage struct {
	GameID  string                 `json:"game_id"`
	Total   int                    `json:"total"`
	Entries []persistence.LogEntry `json:"entries"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
