package engine

import (
	"fmt"
	"math"

	"catamaze/server/models"
)

// BuildVision renders the size x size window centred on center. Cells outside
// the grid read as walls, the centre is marked as self and each of others
// inside the window is marked as another entity.
func BuildVision(g *models.Grid, center models.Position, others []models.Position, size int) (models.Vision, error) {
	if size <= 0 || size%2 == 0 {
		return nil, fmt.Errorf("%w: vision size must be odd, got %d", ErrInconsistentState, size)
	}
	if !g.IsWalkable(center) {
		return nil, fmt.Errorf("%w: viewer at unwalkable (%d, %d)", ErrInconsistentState, center.X, center.Y)
	}

	radius := size / 2
	cells := make([][]byte, size)
	for vy := 0; vy < size; vy++ {
		cells[vy] = make([]byte, size)
		for vx := 0; vx < size; vx++ {
			cells[vy][vx] = g.At(models.Position{X: center.X - radius + vx, Y: center.Y - radius + vy})
		}
	}

	cells[radius][radius] = models.MarkSelf
	for _, o := range others {
		dx, dy := o.X-center.X, o.Y-center.Y
		if dx < -radius || dx > radius || dy < -radius || dy > radius {
			continue
		}
		if dx == 0 && dy == 0 {
			continue
		}
		cell := &cells[radius+dy][radius+dx]
		if *cell != models.CellWall {
			*cell = models.MarkOther
		}
	}

	vision := make(models.Vision, size)
	for i, row := range cells {
		vision[i] = string(row)
	}
	return vision, nil
}

// Audible reports whether a shot fired at shooter can be heard at listener.
func Audible(listener, shooter models.Position, radius int) bool {
	return listener.Chebyshev(shooter) <= radius
}

// SoundCue returns the per-tick cue for listener, or "" when no shot was heard.
func SoundCue(listener models.Position, shots []Shot, radius int) string {
	for _, s := range shots {
		if Audible(listener, s.Origin, radius) {
			return models.SoundClick
		}
	}
	return ""
}

// SoundDescriptors returns a directional descriptor for every audible shot
// fired by someone other than listenerID.
func SoundDescriptors(listenerID string, listener models.Position, shots []Shot, radius int) []models.Sound {
	var out []models.Sound
	for _, s := range shots {
		if s.ShooterID == listenerID || !Audible(listener, s.Origin, radius) {
			continue
		}
		dx, dy := s.Origin.X-listener.X, s.Origin.Y-listener.Y
		out = append(out, models.Sound{
			Direction: Compass(dx, dy),
			DX:        dx,
			DY:        dy,
			Distance:  listener.Chebyshev(s.Origin),
		})
	}
	return out
}

var compassPoints = [8]string{"east", "southeast", "south", "southwest", "west", "northwest", "north", "northeast"}

// Compass names the 8-way direction of offset (dx, dy), with y growing
// downward. A zero offset has no direction.
func Compass(dx, dy int) string {
	if dx == 0 && dy == 0 {
		return ""
	}
	angle := math.Atan2(float64(dy), float64(dx))
	sector := int(math.Round(angle/(math.Pi/4))+8) % 8
	return compassPoints[sector]
}

// observe builds the observation of entity id for the current tick. shots are
// the shots fired during the tick, if any.
func (en *Engine) observe(w *models.World, id string, shots []Shot) (*models.Observation, error) {
	e, ok := w.Entity(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownEntity, id)
	}

	var others []models.Position
	for _, o := range w.LiveEntities() {
		if o.ID != id {
			others = append(others, o.Pos)
		}
	}
	vision, err := BuildVision(w.Grid, e.Pos, others, en.rules.VisionSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build vision for %s: %w", id, err)
	}

	return &models.Observation{
		EntityID:  e.ID,
		HP:        e.HP,
		Ammo:      e.Ammo,
		Tick:      w.Tick,
		Position:  e.Pos,
		Vision:    vision,
		LastSound: SoundCue(e.Pos, shots, en.rules.SoundRange),
		Sounds:    SoundDescriptors(e.ID, e.Pos, shots, en.rules.SoundRange),
		Alive:     e.Alive,
		Won:       e.Won,
		GameOver:  w.GameOver,
	}, nil
}
