package agent

import "catamaze/server/models"

// Mask derives the legal actions of an observation on a Width x Height map.
type Mask struct {
	Width  int
	Height int
}

// DefaultMask covers the reference map size.
func DefaultMask() Mask { return Mask{Width: models.MapSize, Height: models.MapSize} }

// Valid returns the legal actions of obs in models.AllActions order. A dead
// entity may only wait.
func (m Mask) Valid(obs *models.Observation) []models.Action {
	if obs == nil || !obs.Alive || obs.HP <= 0 {
		return []models.Action{models.Wait}
	}

	var valid []models.Action
	for _, a := range models.AllActions {
		switch {
		case a.IsMove():
			dir, _ := a.Direction()
			if m.canMove(obs, dir) {
				valid = append(valid, a)
			}
		case a.IsShoot():
			if obs.Ammo > 0 {
				valid = append(valid, a)
			}
		default:
			valid = append(valid, a)
		}
	}
	return valid
}

func (m Mask) canMove(obs *models.Observation, dir models.Direction) bool {
	next := obs.Position.Add(dir)
	if next.X < 0 || next.Y < 0 || next.X >= m.Width || next.Y >= m.Height {
		return false
	}
	return obs.Vision.At(dir.DX, dir.DY) != models.CellWall
}

// Binary returns one 0/1 slot per action in models.AllActions order.
func (m Mask) Binary(obs *models.Observation) []int {
	out := make([]int, len(models.AllActions))
	for _, a := range m.Valid(obs) {
		out[a.Index()] = 1
	}
	return out
}
