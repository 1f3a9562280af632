package engine

import (
	"fmt"

	"catamaze/server/models"
)

// Shot is a bullet in flight. It only lives for the tick it is fired in.
type Shot struct {
	ShooterID string
	Origin    models.Position
	Direction models.Direction
	Tick      int
}

// Trace walks from one cell beyond origin in dir until a wall, the grid edge
// or maxRange steps. The stopping cell is not part of the path.
func Trace(g *models.Grid, origin models.Position, dir models.Direction, maxRange int) ([]models.Position, error) {
	if !g.InBounds(origin) {
		return nil, fmt.Errorf("%w: shot from outside the grid (%d, %d)", ErrInconsistentState, origin.X, origin.Y)
	}
	if dir.Name() == "" {
		return nil, fmt.Errorf("%w: shot direction (%d, %d)", ErrInconsistentState, dir.DX, dir.DY)
	}

	var path []models.Position
	cur := origin
	for i := 0; i < maxRange; i++ {
		next := cur.Add(dir)
		if !g.IsWalkable(next) {
			break
		}
		path = append(path, next)
		cur = next
	}
	return path, nil
}

// FirstHit returns the first path cell, in travel order, occupied by one of
// candidates.
func FirstHit(path, candidates []models.Position) (models.Position, bool) {
	occupied := make(map[models.Position]struct{}, len(candidates))
	for _, c := range candidates {
		occupied[c] = struct{}{}
	}
	for _, p := range path {
		if _, ok := occupied[p]; ok {
			return p, true
		}
	}
	return models.Position{}, false
}

// Resolve traces s and returns the position of the first candidate struck.
func (s Shot) Resolve(g *models.Grid, maxRange int, candidates []models.Position) (models.Position, bool, error) {
	path, err := Trace(g, s.Origin, s.Direction, maxRange)
	if err != nil {
		return models.Position{}, false, err
	}
	hit, ok := FirstHit(path, candidates)
	return hit, ok, nil
}
