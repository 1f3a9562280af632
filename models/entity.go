package models

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Position is a grid coordinate: X is the column, Y the row.
type Position struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Add steps p by d.
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Chebyshev returns the larger of the per-axis distances.
func (p Position) Chebyshev(o Position) int {
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

// Manhattan returns the sum of the per-axis distances.
func (p Position) Manhattan(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// EntityKind distinguishes the player from autonomous agents.
type EntityKind string

const (
	KindPlayer EntityKind = "player"
	KindAgent  EntityKind = "agent"
)

// Entity is a mobile actor: the player or an autonomous agent.
type Entity struct {
	ID           string
	Kind         EntityKind
	Persona      string
	Pos          Position
	HP           int
	Ammo         int
	LastShotTick int
	Alive        bool
	Won          bool

	queue   []Action
	visited mapset.Set[Position]
}

// NewEntity creates an entity at full HP and ammo.
func NewEntity(id string, kind EntityKind, pos Position, persona string) *Entity {
	return &Entity{
		ID:      id,
		Kind:    kind,
		Persona: persona,
		Pos:     pos,
		HP:      InitialHP,
		Ammo:    InitialAmmo,
		Alive:   true,
		visited: mapset.New[Position](),
	}
}

func (e *Entity) IsPlayer() bool { return e.Kind == KindPlayer }

// QueueLen returns the number of pending actions.
func (e *Entity) QueueLen() int { return len(e.queue) }

// Queue returns a copy of the pending actions, front first.
func (e *Entity) Queue() []Action {
	out := make([]Action, len(e.queue))
	copy(out, e.queue)
	return out
}

func (e *Entity) enqueue(a Action) { e.queue = append(e.queue, a) }

func (e *Entity) clearQueue() { e.queue = nil }

// PopAction removes and returns the front of the queue.
func (e *Entity) PopAction() (Action, bool) {
	if len(e.queue) == 0 {
		return "", false
	}
	a := e.queue[0]
	e.queue = e.queue[1:]
	return a, true
}

// Visit records p and reports whether it had not been visited before.
func (e *Entity) Visit(p Position) bool {
	if e.visited.Has(p) {
		return false
	}
	e.visited.Put(p)
	return true
}

func (e *Entity) HasVisited(p Position) bool { return e.visited.Has(p) }

func (e *Entity) VisitedCount() int { return e.visited.Size() }

// Visited lists visited positions sorted by row then column.
func (e *Entity) Visited() []Position {
	out := make([]Position, 0, e.visited.Size())
	e.visited.Each(func(p Position) {
		out = append(out, p)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
