package engine

import (
	"errors"
	"fmt"

	"catamaze/server/models"
)

// ErrInconsistentState reports a caller contract violation: the state handed
// to the engine cannot have been produced by it.
var ErrInconsistentState = errors.New("inconsistent game state")

// ResolveMove computes a one-cell step from pos in dir. A wall or edge bump
// leaves pos unchanged and reports moved=false.
func ResolveMove(g *models.Grid, pos models.Position, dir models.Direction) (models.Position, bool, error) {
	if !g.IsWalkable(pos) {
		return pos, false, fmt.Errorf("%w: mover at unwalkable (%d, %d)", ErrInconsistentState, pos.X, pos.Y)
	}
	target := pos.Add(dir)
	if !g.IsWalkable(target) {
		return pos, false, nil
	}
	return target, true, nil
}
