package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catamaze/server/models"
)

func TestResolveMove(t *testing.T) {
	g := gridFrom(t,
		"S.#",
		"...",
		"#.E",
	)

	tests := []struct {
		name  string
		from  models.Position
		dir   models.Direction
		want  models.Position
		moved bool
	}{
		{"open cell", models.Position{X: 0, Y: 0}, models.Right, models.Position{X: 1, Y: 0}, true},
		{"into wall", models.Position{X: 1, Y: 0}, models.Right, models.Position{X: 1, Y: 0}, false},
		{"off the top edge", models.Position{X: 0, Y: 0}, models.Up, models.Position{X: 0, Y: 0}, false},
		{"off the left edge", models.Position{X: 0, Y: 1}, models.Left, models.Position{X: 0, Y: 1}, false},
		{"onto exit", models.Position{X: 1, Y: 2}, models.Right, models.Position{X: 2, Y: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved, err := ResolveMove(g, tt.from, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.moved, moved)
		})
	}
}

func TestResolveMove_RejectsUnwalkableStart(t *testing.T) {
	g := gridFrom(t, "S#", ".E")
	_, _, err := ResolveMove(g, models.Position{X: 1, Y: 0}, models.Down)
	assert.ErrorIs(t, err, ErrInconsistentState)
}

// From every walkable cell, every direction lands on a walkable cell at most
// one step away.
func TestResolveMove_StaysWalkable(t *testing.T) {
	g := gridFrom(t,
		"S..#.",
		".#...",
		"...#.",
		"#.#..",
		"....E",
	)
	for _, p := range g.WalkableCells() {
		for _, d := range []models.Direction{models.Up, models.Down, models.Left, models.Right} {
			got, moved, err := ResolveMove(g, p, d)
			require.NoError(t, err)
			assert.True(t, g.IsWalkable(got))
			if moved {
				assert.Equal(t, 1, p.Manhattan(got))
			} else {
				assert.Equal(t, p, got)
			}
		}
	}
}
