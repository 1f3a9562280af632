package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"catamaze/server/models"
)

// DefaultPersonas are the autonomous entities a new game is populated with.
var DefaultPersonas = []string{"aggressive", "cautious", "explorer"}

const placementAttempts = 1000

var ErrNoPlacement = errors.New("no free walkable position")

// WorldOptions configures NewWorld.
type WorldOptions struct {
	GameID   string   // generated when empty
	Personas []string // DefaultPersonas when nil
	Rand     *rand.Rand
}

// NewWorld creates a game on grid with the player and one agent per persona
// placed at random walkable cells, away from the start, the exit and each
// other.
func NewWorld(grid *models.Grid, opts WorldOptions) (*models.World, error) {
	if opts.GameID == "" {
		opts.GameID = uuid.NewString()
	}
	if opts.Personas == nil {
		opts.Personas = DefaultPersonas
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}

	w := models.NewWorld(opts.GameID, grid)
	used := map[models.Position]bool{grid.Start(): true, grid.Exit(): true}

	place := func(id string, kind models.EntityKind, persona string) error {
		pos, err := randomFreeCell(grid, used, opts.Rand)
		if err != nil {
			return fmt.Errorf("failed to place %s: %w", id, err)
		}
		used[pos] = true
		return w.AddEntity(models.NewEntity(id, kind, pos, persona))
	}

	if err := place(models.PlayerID, models.KindPlayer, ""); err != nil {
		return nil, err
	}
	for i, persona := range opts.Personas {
		id := fmt.Sprintf("agent_%s_%d", persona, i+1)
		if err := place(id, models.KindAgent, persona); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func randomFreeCell(g *models.Grid, used map[models.Position]bool, rng *rand.Rand) (models.Position, error) {
	for i := 0; i < placementAttempts; i++ {
		p := models.Position{X: rng.Intn(g.Width()), Y: rng.Intn(g.Height())}
		if !used[p] && g.IsWalkable(p) {
			return p, nil
		}
	}
	return models.Position{}, fmt.Errorf("%w after %d attempts", ErrNoPlacement, placementAttempts)
}
