package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"catamaze/server/models"
)

// JSONStore handles data persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData represents the structure of the JSON database
type JSONData struct {
	Games     map[string]*storedGame `json:"games"`
	Logs      map[string][]LogEntry  `json:"logs"`
	NextLogID int64                  `json:"next_log_id"`
}

type storedGame struct {
	State     *models.WorldSnapshot `json:"world_state"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data:     newJSONData(),
	}

	// Load existing data if file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

func newJSONData() *JSONData {
	return &JSONData{
		Games: make(map[string]*storedGame),
		Logs:  make(map[string][]LogEntry),
	}
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Games == nil {
		js.data.Games = make(map[string]*storedGame)
	}
	if js.data.Logs == nil {
		js.data.Logs = make(map[string][]LogEntry)
	}
	return nil
}

// saveToFile writes the whole database. Callers hold the write lock.
func (js *JSONStore) saveToFile() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}

	tmp := js.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, js.filePath)
}

// SaveGame inserts or replaces a game's state
func (js *JSONStore) SaveGame(snap *models.WorldSnapshot) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	state, err := cloneSnapshot(snap)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	g, exists := js.data.Games[snap.GameID]
	if !exists {
		g = &storedGame{CreatedAt: now}
		js.data.Games[snap.GameID] = g
	}
	g.State = state
	g.UpdatedAt = now

	if err := js.saveToFile(); err != nil {
		return fmt.Errorf("failed to save game %s: %w", snap.GameID, err)
	}
	return nil
}

// LoadGame loads a game's state by ID
func (js *JSONStore) LoadGame(gameID string) (*models.WorldSnapshot, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	g, exists := js.data.Games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return cloneSnapshot(g.State)
}

// DeleteGame removes a game and its logs
func (js *JSONStore) DeleteGame(gameID string) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	if _, exists := js.data.Games[gameID]; !exists {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	delete(js.data.Games, gameID)
	delete(js.data.Logs, gameID)
	return js.saveToFile()
}

// ListGames returns every stored game, most recently updated first
func (js *JSONStore) ListGames() ([]GameSummary, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	out := make([]GameSummary, 0, len(js.data.Games))
	for _, g := range js.data.Games {
		out = append(out, GameSummary{
			GameID:    g.State.GameID,
			Tick:      g.State.Tick,
			GameOver:  g.State.GameOver,
			WinnerID:  g.State.WinnerID,
			UpdatedAt: g.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].GameID < out[j].GameID
	})
	return out, nil
}

// CountActiveGames counts games that are not over
func (js *JSONStore) CountActiveGames() (int, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	n := 0
	for _, g := range js.data.Games {
		if !g.State.GameOver {
			n++
		}
	}
	return n, nil
}

// AppendLogs stores entries, assigning ids and timestamps
func (js *JSONStore) AppendLogs(entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	js.mutex.Lock()
	defer js.mutex.Unlock()

	now := time.Now().UTC()
	for _, e := range entries {
		js.data.NextLogID++
		e.ID = js.data.NextLogID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		js.data.Logs[e.GameID] = append(js.data.Logs[e.GameID], e)
	}

	if err := js.saveToFile(); err != nil {
		return fmt.Errorf("failed to append logs: %w", err)
	}
	return nil
}

// ReadLogs returns a game's log entries ordered by tick then id
func (js *JSONStore) ReadLogs(gameID string, filter LogFilter) ([]LogEntry, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	matched := js.filtered(gameID, filter)
	offset := filter.offset()
	if offset >= len(matched) {
		return []LogEntry{}, nil
	}
	matched = matched[offset:]
	if limit := filter.limit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// CountLogs counts a game's log entries matching filter, ignoring paging
func (js *JSONStore) CountLogs(gameID string, filter LogFilter) (int, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	return len(js.filtered(gameID, filter)), nil
}

func (js *JSONStore) filtered(gameID string, filter LogFilter) []LogEntry {
	var out []LogEntry
	for _, e := range js.data.Logs[gameID] {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tick != out[j].Tick {
			return out[i].Tick < out[j].Tick
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
