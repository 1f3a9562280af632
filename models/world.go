package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEntity   = errors.New("entity not found")
	ErrDuplicateEntity = errors.New("entity already exists")
	ErrEntityDead      = errors.New("entity is dead")
	ErrGameOver        = errors.New("game is already over")
	ErrBadPlacement    = errors.New("entity position is not walkable")
)

// World is the complete state of one game. It owns every entity's action
// queue; only the goroutine advancing the game may touch it.
type World struct {
	GameID   string
	Tick     int
	Grid     *Grid
	Start    Position
	Exit     Position
	GameOver bool
	WinnerID string

	entities map[string]*Entity
	order    []string
}

// NewWorld creates an empty world on grid at tick zero.
func NewWorld(gameID string, grid *Grid) *World {
	return &World{
		GameID:   gameID,
		Grid:     grid,
		Start:    grid.Start(),
		Exit:     grid.Exit(),
		entities: make(map[string]*Entity),
	}
}

// AddEntity places e in the world. Iteration order follows insertion order.
func (w *World) AddEntity(e *Entity) error {
	if _, exists := w.entities[e.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntity, e.ID)
	}
	if !w.Grid.IsWalkable(e.Pos) {
		return fmt.Errorf("%w: %s at (%d, %d)", ErrBadPlacement, e.ID, e.Pos.X, e.Pos.Y)
	}
	w.entities[e.ID] = e
	w.order = append(w.order, e.ID)
	return nil
}

// Entity looks up an entity by id.
func (w *World) Entity(id string) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Player returns the player entity, if present.
func (w *World) Player() (*Entity, bool) {
	return w.Entity(PlayerID)
}

// Entities returns all entities in world order.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.entities[id])
	}
	return out
}

// LiveEntities returns the living entities in world order.
func (w *World) LiveEntities() []*Entity {
	var out []*Entity
	for _, id := range w.order {
		if e := w.entities[id]; e.Alive {
			out = append(out, e)
		}
	}
	return out
}

// EntityAt returns the live entity standing on p.
func (w *World) EntityAt(p Position) (*Entity, bool) {
	for _, id := range w.order {
		if e := w.entities[id]; e.Alive && e.Pos == p {
			return e, true
		}
	}
	return nil, false
}

// Enqueue appends a to the queue of entity id.
func (w *World) Enqueue(id string, a Action) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, a)
	}
	e, err := w.actionable(id)
	if err != nil {
		return err
	}
	e.enqueue(a)
	return nil
}

// ClearQueue drops every pending action of entity id.
func (w *World) ClearQueue(id string) error {
	e, err := w.actionable(id)
	if err != nil {
		return err
	}
	e.clearQueue()
	return nil
}

func (w *World) actionable(id string) (*Entity, error) {
	if w.GameOver {
		return nil, ErrGameOver
	}
	e, ok := w.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	if !e.Alive {
		return nil, fmt.Errorf("%w: %s", ErrEntityDead, id)
	}
	return e, nil
}

// EndGame marks the game over. The first winner recorded is kept.
func (w *World) EndGame(winnerID string) {
	if w.GameOver {
		return
	}
	w.GameOver = true
	w.WinnerID = winnerID
}
