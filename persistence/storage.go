package persistence

import (
	"errors"
	"time"

	"catamaze/server/models"
)

var ErrGameNotFound = errors.New("game not found")

// Log entry types.
const (
	LogGameEvent = "game_event"
	LogReward    = "reward"
	LogPenalty   = "penalty"
)

// DefaultLogLimit caps ReadLogs when the filter sets no limit.
const DefaultLogLimit = 100

// LogEntry is one line of a game's event log.
type LogEntry struct {
	ID        int64          `json:"id"`
	GameID    string         `json:"game_id"`
	Tick      int            `json:"tick"`
	EntityID  string         `json:"entity_id,omitempty"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	ExtraData map[string]any `json:"extra_data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// LogFilter narrows ReadLogs. Zero fields match everything.
type LogFilter struct {
	EntityID  string
	EventType string
	Limit     int
	Offset    int
}

func (f LogFilter) matches(e LogEntry) bool {
	if f.EntityID != "" && e.EntityID != f.EntityID {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	return true
}

func (f LogFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultLogLimit
	}
	return f.Limit
}

func (f LogFilter) offset() int {
	if f.Offset < 0 {
		return 0
	}
	return f.Offset
}

// GameSummary describes a stored game without its full state.
type GameSummary struct {
	GameID    string    `json:"game_id"`
	Tick      int       `json:"tick"`
	GameOver  bool      `json:"game_over"`
	WinnerID  string    `json:"winner_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storage defines the interface for game and log persistence
type Storage interface {
	SaveGame(snap *models.WorldSnapshot) error
	LoadGame(gameID string) (*models.WorldSnapshot, error)
	DeleteGame(gameID string) error
	ListGames() ([]GameSummary, error)
	CountActiveGames() (int, error)
	AppendLogs(entries []LogEntry) error
	ReadLogs(gameID string, filter LogFilter) ([]LogEntry, error)
	CountLogs(gameID string, filter LogFilter) (int, error)
	Close() error
}
