package models

import (
	"encoding/json"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// EntitySnapshot is the external representation of an Entity.
type EntitySnapshot struct {
	ID           string     `json:"entity_id" msgpack:"entity_id"`
	Kind         EntityKind `json:"entity_type" msgpack:"entity_type"`
	Persona      string     `json:"persona,omitempty" msgpack:"persona,omitempty"`
	Position     Position   `json:"position" msgpack:"position"`
	HP           int        `json:"hp" msgpack:"hp"`
	Ammo         int        `json:"ammo" msgpack:"ammo"`
	LastShotTick int        `json:"last_bullet_tick" msgpack:"last_bullet_tick"`
	Alive        bool       `json:"alive" msgpack:"alive"`
	Won          bool       `json:"won" msgpack:"won"`
	ActionQueue  []Action   `json:"action_queue" msgpack:"action_queue"`
	Visited      []Position `json:"visited_positions" msgpack:"visited_positions"`
}

// WorldSnapshot is the external representation of a World. Entities keep
// world order.
type WorldSnapshot struct {
	GameID   string           `json:"game_id" msgpack:"game_id"`
	Tick     int              `json:"tick" msgpack:"tick"`
	Map      []string         `json:"map_grid" msgpack:"map_grid"`
	Start    Position         `json:"start" msgpack:"start"`
	Exit     Position         `json:"exit" msgpack:"exit"`
	Entities []EntitySnapshot `json:"entities" msgpack:"entities"`
	GameOver bool             `json:"game_over" msgpack:"game_over"`
	WinnerID string           `json:"winner_id,omitempty" msgpack:"winner_id,omitempty"`
}

// Snapshot captures the entity's full state.
func (e *Entity) Snapshot() EntitySnapshot {
	return EntitySnapshot{
		ID:           e.ID,
		Kind:         e.Kind,
		Persona:      e.Persona,
		Position:     e.Pos,
		HP:           e.HP,
		Ammo:         e.Ammo,
		LastShotTick: e.LastShotTick,
		Alive:        e.Alive,
		Won:          e.Won,
		ActionQueue:  e.Queue(),
		Visited:      e.Visited(),
	}
}

// EntityFromSnapshot rebuilds an Entity, clamping HP and ammo to their bounds.
func EntityFromSnapshot(s EntitySnapshot) *Entity {
	e := &Entity{
		ID:           s.ID,
		Kind:         s.Kind,
		Persona:      s.Persona,
		Pos:          s.Position,
		HP:           clamp(s.HP, 0, MaxHP),
		Ammo:         clamp(s.Ammo, 0, MaxAmmo),
		LastShotTick: s.LastShotTick,
		Alive:        s.Alive,
		Won:          s.Won,
		visited:      mapset.New[Position](),
	}
	if len(s.ActionQueue) > 0 {
		e.queue = append([]Action(nil), s.ActionQueue...)
	}
	for _, p := range s.Visited {
		e.visited.Put(p)
	}
	return e
}

// Snapshot captures the world's full state.
func (w *World) Snapshot() *WorldSnapshot {
	s := &WorldSnapshot{
		GameID:   w.GameID,
		Tick:     w.Tick,
		Map:      w.Grid.Rows(),
		Start:    w.Start,
		Exit:     w.Exit,
		Entities: make([]EntitySnapshot, 0, len(w.order)),
		GameOver: w.GameOver,
		WinnerID: w.WinnerID,
	}
	for _, e := range w.Entities() {
		s.Entities = append(s.Entities, e.Snapshot())
	}
	return s
}

// WorldFromSnapshot rebuilds a World, validating the grid and placements.
func WorldFromSnapshot(s *WorldSnapshot) (*World, error) {
	grid, err := NewGrid(s.Map)
	if err != nil {
		return nil, fmt.Errorf("failed to restore grid of game %s: %w", s.GameID, err)
	}
	w := NewWorld(s.GameID, grid)
	w.Tick = s.Tick
	w.GameOver = s.GameOver
	w.WinnerID = s.WinnerID
	for _, es := range s.Entities {
		if err := w.AddEntity(EntityFromSnapshot(es)); err != nil {
			return nil, fmt.Errorf("failed to restore game %s: %w", s.GameID, err)
		}
	}
	return w, nil
}

func (w *World) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Snapshot())
}

func (w *World) UnmarshalJSON(data []byte) error {
	var s WorldSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	restored, err := WorldFromSnapshot(&s)
	if err != nil {
		return err
	}
	*w = *restored
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
