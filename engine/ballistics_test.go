package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catamaze/server/models"
)

func TestTrace_StopsAtWall(t *testing.T) {
	g := gridFrom(t,
		"S....",
		"...#.",
		".....",
		".....",
		"....E",
	)
	path, err := Trace(g, models.Position{X: 0, Y: 1}, models.Right, 50)
	require.NoError(t, err)
	assert.Equal(t, []models.Position{{X: 1, Y: 1}, {X: 2, Y: 1}}, path)
}

func TestTrace_StopsAtEdgeAndRange(t *testing.T) {
	g := openGrid(t, 6)

	path, err := Trace(g, models.Position{X: 2, Y: 0}, models.Down, 50)
	require.NoError(t, err)
	assert.Len(t, path, 5)
	assert.Equal(t, models.Position{X: 2, Y: 5}, path[len(path)-1])

	path, err = Trace(g, models.Position{X: 0, Y: 3}, models.Right, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.Position{{X: 1, Y: 3}, {X: 2, Y: 3}}, path)

	path, err = Trace(g, models.Position{X: 0, Y: 3}, models.Left, 50)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestTrace_Errors(t *testing.T) {
	g := openGrid(t, 4)
	_, err := Trace(g, models.Position{X: 9, Y: 9}, models.Up, 5)
	assert.ErrorIs(t, err, ErrInconsistentState)
	_, err = Trace(g, models.Position{X: 1, Y: 1}, models.Direction{DX: 1, DY: 1}, 5)
	assert.ErrorIs(t, err, ErrInconsistentState)
}

func TestFirstHit(t *testing.T) {
	path := []models.Position{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}

	hit, ok := FirstHit(path, []models.Position{{X: 3, Y: 0}, {X: 2, Y: 0}})
	assert.True(t, ok)
	assert.Equal(t, models.Position{X: 2, Y: 0}, hit)

	_, ok = FirstHit(path, []models.Position{{X: 2, Y: 1}})
	assert.False(t, ok)
}

func TestShotResolve_WallShieldsTarget(t *testing.T) {
	g := gridFrom(t,
		"S.#..",
		".....",
		".....",
		".....",
		"....E",
	)
	s := Shot{ShooterID: "a", Origin: models.Position{X: 0, Y: 0}, Direction: models.Right}
	_, hit, err := s.Resolve(g, 50, []models.Position{{X: 3, Y: 0}})
	require.NoError(t, err)
	assert.False(t, hit)
}
